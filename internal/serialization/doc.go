// Package serialization reads and writes tensor maps in the EQSM binary
// format.
//
// Layout:
//
//	[64 bytes: fixed header]
//	  magic "EQSM", version, flags, JSON header size, payload size,
//	  SHA-256 of the stored payload
//	[JSON header: keys, per block labels and array metadata]
//	[zero padding to a 64 byte boundary]
//	[payload: little endian arrays, optionally lz4 or zstd compressed]
//
// Labels are stored in the JSON header as names plus a flat row-major list
// of int32 values. Every block stores its values array and one array per
// gradient, in gradient insertion order.
//
// Example usage:
//
//	store, err := blobstore.NewLocalStore("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = serialization.Save(ctx, store, "energies.eqs", m, serialization.WriterOptions{
//	    Compression: serialization.CompressionZstd,
//	})
//
//	m, err = serialization.Load(ctx, store, "energies.eqs", serialization.ReaderOptions{})
package serialization
