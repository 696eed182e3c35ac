package image

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/flashgo"
)

// Flash writes every entry of img onto the device.
//
// Each entry is decompressed and verified against its recorded checksum
// before a byte reaches the device, then written create-always so stale
// content under the same path is replaced. Entry paths must resolve on the
// target; the storage API cannot create directories.
//
// Entries transfer concurrently, so a failed flash may leave some entries
// written and others not. Flashing the image again is safe.
func Flash(ctx context.Context, img *Image, st *flashgo.Storage, optFns ...Option) error {
	o := applyOptions(optFns...)
	ctrl := newTransferController(o.workers, o.ioLimit)

	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range img.Manifest.Entries {
		g.Go(func() error {
			if err := ctrl.acquireWorker(ctx); err != nil {
				return err
			}
			defer ctrl.releaseWorker()

			data, err := img.entryData(entry)
			if err != nil {
				return err
			}
			return writeFilePaced(ctx, ctrl, st, entry.Path, data)
		})
	}
	return g.Wait()
}

// writeFilePaced writes data to a device file, charging each chunk against
// the IO budget.
func writeFilePaced(ctx context.Context, ctrl *transferController, st *flashgo.Storage, path string, data []byte) error {
	f, err := st.Create(path)
	if err != nil {
		return err
	}

	for off := 0; off < len(data); off += transferChunkSize {
		end := off + transferChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		if err := ctrl.acquireIO(ctx, len(chunk)); err != nil {
			_ = f.Close()
			return err
		}
		if err := flashgo.WriteAll(f, chunk); err != nil {
			_ = f.Close()
			return err
		}
	}

	return f.Close()
}
