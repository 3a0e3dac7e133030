// Package raster is the decode/encode and pixel access layer for simcheck.
//
// # Overview
//
// Every other package works on plain [image.Image] values. This package owns
// the edges where bytes become images and images become bytes, plus the two
// pixel-level helpers the core needs:
//
//   - [Decode], [DecodeFile]: PNG, TIFF, BMP, JPEG, GIF and WebP input
//   - [Encode], [EncodeFile]: PNG, uncompressed TIFF, BMP, JPEG and GIF output
//   - [NewSampler]: random access to the first three 8-bit channels
//   - [Resize]: smooth rescaling to an exact target size
//
// # Uncompressed TIFF
//
// TIFF output is always written without compression. Durable test fixtures
// are stored this way so that re-encoding never introduces artifacts between
// runs.
//
//	f, _ := os.Create("expected.tiff")
//	err := raster.Encode(f, img, raster.FormatTIFF)
//
// # Channel Semantics
//
// A [Sampler] reports un-premultiplied red, green and blue values. Gray
// images only carry one channel; their samplers report it as red and return
// zero for green and blue.
package raster
