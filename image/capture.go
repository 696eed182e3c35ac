package image

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/flashgo"
)

// Capture reads the given device files into a new image.
//
// Files transfer concurrently within the limits set by WithWorkers and
// WithIOLimit; the payload layout is deterministic regardless of completion
// order. Paths appear in the manifest in the order given.
func Capture(ctx context.Context, st *flashgo.Storage, paths []string, optFns ...Option) (*Image, error) {
	o := applyOptions(optFns...)
	ctrl := newTransferController(o.workers, o.ioLimit)

	type captured struct {
		entry  Entry
		stored []byte
	}
	results := make([]captured, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctrl.acquireWorker(ctx); err != nil {
				return err
			}
			defer ctrl.releaseWorker()

			data, err := readFilePaced(ctx, ctrl, st, path)
			if err != nil {
				return err
			}
			if uint64(len(data)) > math.MaxUint32 {
				return fmt.Errorf("image: %s: file too large for an entry", path)
			}

			stored, err := compressEntry(data, o.compression)
			if err != nil {
				return err
			}

			results[i] = captured{
				entry: Entry{
					Path:       path,
					Size:       uint32(len(data)),
					StoredSize: uint32(len(stored)),
					Checksum:   crc32.ChecksumIEEE(data),
				},
				stored: stored,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	img := &Image{
		Compression: o.compression,
		Manifest:    Manifest{CreatedAt: time.Now().UTC()},
	}

	var payload []byte
	for _, r := range results {
		r.entry.Offset = uint64(len(payload))
		payload = append(payload, r.stored...)
		img.Manifest.Entries = append(img.Manifest.Entries, r.entry)
	}
	img.payload = payload

	return img, nil
}

// readFilePaced reads a whole device file, charging each chunk against the
// IO budget.
func readFilePaced(ctx context.Context, ctrl *transferController, st *flashgo.Storage, path string) ([]byte, error) {
	f, err := st.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, size)
	buf := make([]byte, transferChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := f.Read(buf)
		if n > 0 {
			if err := ctrl.acquireIO(ctx, n); err != nil {
				return nil, err
			}
			data = append(data, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
