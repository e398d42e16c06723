package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/born-ml/equistore/backend/cpu"
	"github.com/born-ml/equistore/blobstore"
	"github.com/born-ml/equistore/internal/logging"
	"github.com/born-ml/equistore/internal/parallel"
	"github.com/born-ml/equistore/labels"
	"github.com/born-ml/equistore/operations"
	"github.com/born-ml/equistore/serialization"
	"github.com/born-ml/equistore/tensormap"
)

// env carries what every command needs once the config is resolved.
type env struct {
	cfg    *Config
	store  blobstore.BlobStore
	logger *logging.Logger
	stdout io.Writer
	stderr io.Writer
}

func newEnv(ctx context.Context, cfg *Config, stdout, stderr io.Writer) (*env, error) {
	logger := logging.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "kind", cfg.Store.Kind, "io_limit", cfg.IOLimit)

	return &env{
		cfg:    cfg,
		store:  store,
		logger: logger.WithStore(cfg.Store.Kind),
		stdout: stdout,
		stderr: stderr,
	}, nil
}

func (e *env) operationOptions() []operations.Option {
	cfg := parallel.DefaultConfig()
	if e.cfg.Workers > 0 {
		cfg.NumWorkers = e.cfg.Workers
		cfg.Enabled = e.cfg.Workers > 1
	}
	return []operations.Option{
		operations.WithBackend(cpu.NewWithWorkers(cfg.NumWorkers)),
		operations.WithParallel(cfg),
		operations.WithLogger(e.logger),
	}
}

func (e *env) readerOptions() serialization.ReaderOptions {
	return serialization.ReaderOptions{Logger: e.logger}
}

func (e *env) writerOptions() (serialization.WriterOptions, error) {
	compression, err := serialization.ParseCompression(e.cfg.Compression)
	if err != nil {
		return serialization.WriterOptions{}, err
	}
	return serialization.WriterOptions{
		Compression: compression,
		Metadata:    map[string]string{"producer": "eqs " + version},
		Logger:      e.logger,
	}, nil
}

func (e *env) loadAll(ctx context.Context, names []string) ([]*tensormap.TensorMap, error) {
	return serialization.LoadMany(ctx, e.store, names, e.readerOptions(), e.cfg.Workers)
}

func (e *env) save(ctx context.Context, name string, m *tensormap.TensorMap) error {
	opts, err := e.writerOptions()
	if err != nil {
		return err
	}
	return serialization.Save(ctx, e.store, name, m, opts)
}

func newFlagSet(name, args string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: eqs %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// inspect prints a summary of each named map.
func (e *env) inspect(ctx context.Context, args []string) error {
	fs := newFlagSet("inspect", "NAME...", e.stderr)
	gradients := fs.Bool("gradients", false, "Also print gradient shapes")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	maps, err := e.loadAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	for i, m := range maps {
		fmt.Fprintf(e.stdout, "%s: %d blocks\n", fs.Arg(i), m.Len())
		fmt.Fprintf(e.stdout, "  keys:       %v\n", m.Keys().Names())
		fmt.Fprintf(e.stdout, "  samples:    %v\n", m.SampleNames())
		fmt.Fprintf(e.stdout, "  components: %v\n", m.ComponentNames())
		fmt.Fprintf(e.stdout, "  properties: %v\n", m.PropertyNames())
		fmt.Fprintf(e.stdout, "  gradients:  %v\n", m.GradientNames())
		for key, b := range m.All() {
			fmt.Fprintf(e.stdout, "  %v: %v\n", key, b.Shape())
			if !*gradients {
				continue
			}
			for parameter, g := range b.Gradients() {
				fmt.Fprintf(e.stdout, "    %s: %v\n", parameter, g.Shape())
			}
		}
	}
	return nil
}

// join joins the named maps and stores the result.
func (e *env) join(ctx context.Context, args []string) error {
	fs := newFlagSet("join", "NAME NAME...", e.stderr)
	var (
		axisName = fs.String("axis", "properties", "Axis to join along (samples or properties)")
		output   = fs.String("o", "", "Name of the joined map (required)")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *output == "" || fs.NArg() < 2 {
		fs.Usage()
		return errUsage
	}
	axis, err := operations.ParseAxis(*axisName)
	if err != nil {
		return err
	}

	maps, err := e.loadAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	joined, err := operations.Join(maps, axis, e.operationOptions()...)
	if err != nil {
		return err
	}
	if err := e.save(ctx, *output, joined); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "joined %d maps into %s (%d blocks)\n", len(maps), *output, joined.Len())
	return nil
}

// keyList collects repeated -key flags.
type keyList [][]int32

func (k *keyList) String() string {
	return fmt.Sprint([][]int32(*k))
}

func (k *keyList) Set(s string) error {
	fields := strings.Split(s, ",")
	key := make([]int32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", s, err)
		}
		key[i] = int32(v)
	}
	*k = append(*k, key)
	return nil
}

// drop removes the blocks matching -key and stores the result.
func (e *env) drop(ctx context.Context, args []string) error {
	fs := newFlagSet("drop", "NAME", e.stderr)
	var keys keyList
	fs.Var(&keys, "key", "Comma separated key values to drop (repeatable)")
	output := fs.String("o", "", "Name of the resulting map (required)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *output == "" || fs.NArg() != 1 || len(keys) == 0 {
		fs.Usage()
		return errUsage
	}

	maps, err := e.loadAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	m := maps[0]

	selection, err := labels.New(m.Keys().Names(), keys)
	if err != nil {
		return fmt.Errorf("keys to drop: %w", err)
	}
	kept, err := operations.DropBlocks(m, selection, e.operationOptions()...)
	if err != nil {
		return err
	}
	if err := e.save(ctx, *output, kept); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "dropped %d blocks, %d left in %s\n", m.Len()-kept.Len(), kept.Len(), *output)
	return nil
}

// compare reports whether two maps hold the same metadata and close values.
func (e *env) compare(ctx context.Context, args []string) error {
	fs := newFlagSet("compare", "NAME NAME", e.stderr)
	var (
		rtol = fs.Float64("rtol", operations.DefaultTolerance.Rel, "Relative tolerance")
		atol = fs.Float64("atol", operations.DefaultTolerance.Abs, "Absolute tolerance")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}

	maps, err := e.loadAll(ctx, fs.Args())
	if err != nil {
		return err
	}
	if err := operations.AllCloseRaise(maps[0], maps[1], operations.Tolerance{Rel: *rtol, Abs: *atol}); err != nil {
		return fmt.Errorf("%s and %s differ: %w", fs.Arg(0), fs.Arg(1), err)
	}
	fmt.Fprintf(e.stdout, "%s and %s are equal\n", fs.Arg(0), fs.Arg(1))
	return nil
}
