package image

import (
	"context"
	"io"

	"github.com/hupe1980/flashgo/imagestore"
)

// Save encodes img into the store under name. A failed encode removes the
// partially written blob instead of leaving it behind.
func Save(ctx context.Context, store imagestore.Store, name string, img *Image) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := img.Encode(w); err != nil {
		_ = w.Close()
		_ = store.Delete(ctx, name)
		return err
	}
	return w.Close()
}

// Load decodes the image stored under name.
//
// Stores whose blobs support ranged reads serve the whole container in a
// single request; otherwise the blob is read through its ReaderAt.
func Load(ctx context.Context, store imagestore.Store, name string) (*Image, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	if rr, ok := blob.(imagestore.RangeReader); ok {
		rc, err := rr.ReadRange(0, blob.Size())
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return Decode(rc)
	}

	return Decode(io.NewSectionReader(blob, 0, blob.Size()))
}
