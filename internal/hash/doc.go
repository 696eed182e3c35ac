// Package hash provides hardware-accelerated checksums for data integrity.
//
// All checksums here use CRC32-Castagnoli (CRC32C), the polynomial S3
// validates server side on upload. The table is pre-computed at package
// init time; Go's crc32 package picks SSE4.2 or the ARM CRC extension when
// the CPU has them.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
