package image

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/hupe1980/flashgo/codec"
)

// Magic identifies flashgo image files ("FZIM" on disk, little-endian).
const Magic uint32 = 0x4D495A46

// FormatVersion is the current container format version.
const FormatVersion uint16 = 1

// headerSize is the fixed header length in bytes:
// magic u32 | version u16 | compression u8 | codec-name len u8 |
// manifest len u32 | payload len u64 | checksum u32.
const headerSize = 24

// maxManifestSize bounds the manifest allocation when decoding untrusted
// input. Manifests hold one entry per file; 64 MiB is far beyond any real
// device tree.
const maxManifestSize = 64 << 20

var (
	// ErrBadMagic is returned when the input does not start with Magic.
	ErrBadMagic = errors.New("image: bad magic")

	// ErrUnsupportedVersion is returned for container versions this build
	// cannot read.
	ErrUnsupportedVersion = errors.New("image: unsupported format version")

	// ErrChecksum is returned when stored and computed CRC32 disagree, for
	// the container as a whole or for a single entry.
	ErrChecksum = errors.New("image: checksum mismatch")
)

// Encode writes the image to w in the binary container format.
// The manifest is encoded with codec.Default and the codec name is recorded
// in the header, so Decode selects the same codec on load.
func (img *Image) Encode(w io.Writer) error {
	c := codec.Default
	name := c.Name()
	if len(name) == 0 || len(name) > math.MaxUint8 {
		return fmt.Errorf("image: codec name %q does not fit the header", name)
	}

	manifest, err := c.Marshal(img.Manifest)
	if err != nil {
		return fmt.Errorf("image: marshal manifest: %w", err)
	}
	if len(manifest) > math.MaxUint32 {
		return errors.New("image: manifest too large")
	}

	sum := crc32.ChecksumIEEE(manifest)
	sum = crc32.Update(sum, crc32.IEEETable, img.payload)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:], Magic)
	binary.LittleEndian.PutUint16(header[4:], FormatVersion)
	header[6] = uint8(img.Compression)
	header[7] = uint8(len(name))
	binary.LittleEndian.PutUint32(header[8:], uint32(len(manifest)))
	binary.LittleEndian.PutUint64(header[12:], uint64(len(img.payload)))
	binary.LittleEndian.PutUint32(header[20:], sum)

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	if _, err := w.Write(manifest); err != nil {
		return err
	}
	if _, err := w.Write(img.payload); err != nil {
		return err
	}

	img.checksum = sum
	return nil
}

// Decode reads an image from r.
func Decode(r io.Reader) (*Image, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrBadMagic
		}
		return nil, err
	}

	if binary.LittleEndian.Uint32(header[0:]) != Magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(header[4:]); v != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	compression := CompressionType(header[6])
	if !compression.valid() {
		return nil, fmt.Errorf("image: unknown compression type %d", header[6])
	}

	nameLen := int(header[7])
	manifestLen := binary.LittleEndian.Uint32(header[8:])
	payloadLen := binary.LittleEndian.Uint64(header[12:])
	storedSum := binary.LittleEndian.Uint32(header[20:])

	if manifestLen > maxManifestSize {
		return nil, fmt.Errorf("image: manifest length %d exceeds limit", manifestLen)
	}
	if payloadLen > math.MaxInt {
		return nil, fmt.Errorf("image: payload length %d exceeds address space", payloadLen)
	}

	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("image: read codec name: %w", err)
	}

	manifestBuf := make([]byte, manifestLen)
	if _, err := io.ReadFull(r, manifestBuf); err != nil {
		return nil, fmt.Errorf("image: read manifest: %w", err)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("image: read payload: %w", err)
	}

	sum := crc32.ChecksumIEEE(manifestBuf)
	sum = crc32.Update(sum, crc32.IEEETable, payload)
	if sum != storedSum {
		return nil, fmt.Errorf("%w: header %08x, computed %08x", ErrChecksum, storedSum, sum)
	}

	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("image: unknown codec %q", string(nameBuf))
	}

	var manifest Manifest
	if err := c.Unmarshal(manifestBuf, &manifest); err != nil {
		return nil, fmt.Errorf("image: unmarshal manifest: %w", err)
	}

	return &Image{
		Compression: compression,
		Manifest:    manifest,
		payload:     payload,
		checksum:    sum,
	}, nil
}
