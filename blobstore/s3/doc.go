// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package s3 stores tensor maps in Amazon S3.
//
// Small blobs are written with a single PutObject carrying a CRC32C
// checksum. Blobs of at least UploadConfig.PartSize bytes use a multipart
// upload through the SDK upload manager.
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3blob.NewStore(s3.NewFromConfig(cfg), "my-bucket", "maps/")
package s3
