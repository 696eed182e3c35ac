package image

import (
	"fmt"
	"hash/crc32"
	"time"
)

// Entry describes one captured file.
type Entry struct {
	// Path is the device path the file was captured from.
	Path string `json:"path"`

	// Size is the uncompressed content size in bytes.
	Size uint32 `json:"size"`

	// Offset is the entry's position in the payload.
	Offset uint64 `json:"offset"`

	// StoredSize is the entry's stored (possibly compressed) size.
	// Entries whose stored size equals Size are stored raw.
	StoredSize uint32 `json:"stored_size"`

	// Checksum is the CRC32 of the uncompressed content.
	Checksum uint32 `json:"crc32"`
}

// Manifest lists the files in an image.
type Manifest struct {
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// Image is a captured set of device files. The payload holds the entries'
// stored bytes back to back in manifest order.
type Image struct {
	Compression CompressionType
	Manifest    Manifest

	payload  []byte
	checksum uint32
}

// FileCount returns the number of files in the image.
func (img *Image) FileCount() int {
	return len(img.Manifest.Entries)
}

// Size returns the total uncompressed size of all entries in bytes.
func (img *Image) Size() int64 {
	var total int64
	for _, e := range img.Manifest.Entries {
		total += int64(e.Size)
	}
	return total
}

// StoredSize returns the payload size in bytes.
func (img *Image) StoredSize() int64 {
	return int64(len(img.payload))
}

// Checksum returns the container CRC32 recorded by the last Encode or
// Decode, or zero for an image that has not passed through either.
func (img *Image) Checksum() uint32 {
	return img.checksum
}

// Lookup returns the entry for a device path.
func (img *Image) Lookup(path string) (Entry, bool) {
	for _, e := range img.Manifest.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// EntryData returns the uncompressed, checksum-verified content of the
// entry at path.
func (img *Image) EntryData(path string) ([]byte, error) {
	entry, ok := img.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("image: no entry %q", path)
	}
	return img.entryData(entry)
}

func (img *Image) entryData(entry Entry) ([]byte, error) {
	end := entry.Offset + uint64(entry.StoredSize)
	if end > uint64(len(img.payload)) {
		return nil, fmt.Errorf("image: entry %q extends beyond payload", entry.Path)
	}

	data, err := decompressEntry(img.payload[entry.Offset:end], entry.Size, img.Compression)
	if err != nil {
		return nil, fmt.Errorf("image: entry %q: %w", entry.Path, err)
	}

	if sum := crc32.ChecksumIEEE(data); sum != entry.Checksum {
		return nil, fmt.Errorf("%w: entry %q: recorded %08x, computed %08x", ErrChecksum, entry.Path, entry.Checksum, sum)
	}
	return data, nil
}
