// Package image captures device file sets into portable image files and
// flashes them back.
//
// An image holds a manifest (one entry per file, with sizes, offsets and
// CRC32 checksums) plus a payload of per-entry compressed content. The
// container is self-describing: its header records the format version, the
// compression type and the manifest codec, so any build that knows the
// format can open any image.
//
// # Capture and Flash
//
//	st, _ := flashgo.New(api)
//	img, err := image.Capture(ctx, st, []string{"/boot.bin", "/config.txt"},
//	    image.WithCompression(image.CompressionZSTD),
//	    image.WithWorkers(4),
//	)
//	...
//	err = image.Flash(ctx, img, st)
//
// Transfers run concurrently; WithWorkers bounds the number of in-flight
// files and WithIOLimit caps aggregate throughput for devices that stall
// under load.
//
// # Persistence
//
// Encode and Decode move images through any io.Writer/io.Reader. Save and
// Load store them in an imagestore.Store (local directory, S3, MinIO):
//
//	err = image.Save(ctx, store, "flip-a7/ext-v1.fzi", img)
//	img, err = image.Load(ctx, store, "flip-a7/ext-v1.fzi")
//
// Every decode verifies the container checksum, and every entry read
// verifies the per-entry checksum, so corruption is caught before a flash
// writes a bad byte.
package image
