package devsim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flashgo/devsim"
	"github.com/hupe1980/flashgo/fsapi"
)

func openHandle(t *testing.T, d *devsim.Device, path string, access fsapi.AccessMode, mode fsapi.OpenMode) fsapi.Handle {
	t.Helper()

	h := d.FileAlloc()
	require.True(t, d.FileOpen(h, path, access, mode), "open %s: %s", path, d.FileGetError(h))
	return h
}

func TestOpenModes(t *testing.T) {
	t.Run("open existing fails on missing file", func(t *testing.T) {
		d := devsim.New()
		h := d.FileAlloc()

		require.False(t, d.FileOpen(h, "/missing.bin", fsapi.AccessRead, fsapi.OpenExisting))
		assert.Equal(t, fsapi.StatusNotExists, d.FileGetError(h))
		require.True(t, d.FileClose(h))
	})

	t.Run("open always creates missing file", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/new.bin", fsapi.AccessRead|fsapi.AccessWrite, fsapi.OpenAlways)
		require.True(t, d.FileClose(h))

		assert.Equal(t, []string{"/new.bin"}, d.Paths())
	})

	t.Run("create new fails on existing file", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		require.True(t, d.FileClose(h))

		h = d.FileAlloc()
		require.False(t, d.FileOpen(h, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew))
		assert.Equal(t, fsapi.StatusExists, d.FileGetError(h))
		require.True(t, d.FileClose(h))
	})

	t.Run("create always truncates", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		require.Equal(t, 5, d.FileWrite(h, []byte("hello")))
		require.True(t, d.FileClose(h))

		h = openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateAlways)
		assert.Equal(t, uint32(0), d.FileSize(h))
		require.True(t, d.FileClose(h))
	})

	t.Run("append positions at end", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/log.txt", fsapi.AccessWrite, fsapi.CreateNew)
		require.Equal(t, 3, d.FileWrite(h, []byte("abc")))
		require.True(t, d.FileClose(h))

		h = openHandle(t, d, "/log.txt", fsapi.AccessWrite, fsapi.OpenAppend)
		assert.Equal(t, uint32(3), d.FileTell(h))
		require.Equal(t, 3, d.FileWrite(h, []byte("def")))
		require.True(t, d.FileClose(h))

		data, ok := d.FileBytes("/log.txt")
		require.True(t, ok)
		assert.Equal(t, []byte("abcdef"), data)
	})

	t.Run("combined mode bits are rejected", func(t *testing.T) {
		d := devsim.New()
		h := d.FileAlloc()

		require.False(t, d.FileOpen(h, "/x.bin", fsapi.AccessWrite, fsapi.OpenAlways|fsapi.CreateNew))
		assert.Equal(t, fsapi.StatusInvalidParameter, d.FileGetError(h))
		require.True(t, d.FileClose(h))
	})

	t.Run("zero access is rejected", func(t *testing.T) {
		d := devsim.New()
		h := d.FileAlloc()

		require.False(t, d.FileOpen(h, "/x.bin", 0, fsapi.OpenAlways))
		assert.Equal(t, fsapi.StatusInvalidParameter, d.FileGetError(h))
		require.True(t, d.FileClose(h))
	})
}

func TestReadWriteSeek(t *testing.T) {
	d := devsim.New()
	h := openHandle(t, d, "/data.bin", fsapi.AccessRead|fsapi.AccessWrite, fsapi.CreateNew)
	defer d.FileClose(h)

	require.Equal(t, 6, d.FileWrite(h, []byte("abcdef")))
	require.Equal(t, uint32(6), d.FileTell(h))

	// Rewind and read everything back.
	require.True(t, d.FileSeek(h, 0, true))
	buf := make([]byte, 16)
	n := d.FileRead(h, buf)
	require.Equal(t, 6, n)
	assert.Equal(t, []byte("abcdef"), buf[:n])

	// At the end a read returns zero with an OK latch.
	require.Equal(t, 0, d.FileRead(h, buf))
	assert.Equal(t, fsapi.StatusOK, d.FileGetError(h))

	// Relative seek from the current position.
	require.True(t, d.FileSeek(h, 2, true))
	require.True(t, d.FileSeek(h, 3, false))
	assert.Equal(t, uint32(5), d.FileTell(h))
}

func TestAccessEnforcement(t *testing.T) {
	t.Run("write denied on read-only handle", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/ro.bin", fsapi.AccessRead, fsapi.OpenAlways)
		defer d.FileClose(h)

		require.Equal(t, 0, d.FileWrite(h, []byte("x")))
		assert.Equal(t, fsapi.StatusDenied, d.FileGetError(h))
	})

	t.Run("read denied on write-only handle", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/wo.bin", fsapi.AccessWrite, fsapi.OpenAlways)
		defer d.FileClose(h)

		require.Equal(t, 0, d.FileRead(h, make([]byte, 4)))
		assert.Equal(t, fsapi.StatusDenied, d.FileGetError(h))
	})
}

func TestDiskFull(t *testing.T) {
	d := devsim.New(devsim.WithBlockSize(16), devsim.WithCapacity(64))
	h := openHandle(t, d, "/big.bin", fsapi.AccessWrite, fsapi.CreateNew)
	defer d.FileClose(h)

	// The medium holds 64 bytes, the write asks for 100. The accepted
	// prefix is reported with an OK latch, as on a real FAT volume.
	n := d.FileWrite(h, make([]byte, 100))
	require.Equal(t, 64, n)
	assert.Equal(t, fsapi.StatusOK, d.FileGetError(h))
	assert.Equal(t, uint64(0), d.FreeBytes())

	// Once full, writes make no progress but still latch OK.
	require.Equal(t, 0, d.FileWrite(h, []byte("x")))
	assert.Equal(t, fsapi.StatusOK, d.FileGetError(h))
}

func TestSeekBeyondEnd(t *testing.T) {
	t.Run("writable handle extends with zeros", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/sparse.bin", fsapi.AccessRead|fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		require.Equal(t, 3, d.FileWrite(h, []byte("abc")))
		require.True(t, d.FileSeek(h, 8, true))
		require.Equal(t, uint32(8), d.FileSize(h))

		data, ok := d.FileBytes("/sparse.bin")
		require.True(t, ok)
		assert.Equal(t, []byte("abc\x00\x00\x00\x00\x00"), data)
	})

	t.Run("read-only handle clamps to end", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/small.bin", fsapi.AccessWrite, fsapi.CreateNew)
		require.Equal(t, 3, d.FileWrite(h, []byte("abc")))
		require.True(t, d.FileClose(h))

		h = openHandle(t, d, "/small.bin", fsapi.AccessRead, fsapi.OpenExisting)
		defer d.FileClose(h)

		require.True(t, d.FileSeek(h, 100, true))
		assert.Equal(t, uint32(3), d.FileTell(h))
	})

	t.Run("extension fails without free blocks", func(t *testing.T) {
		d := devsim.New(devsim.WithBlockSize(16), devsim.WithCapacity(32))
		h := openHandle(t, d, "/full.bin", fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		require.False(t, d.FileSeek(h, 1000, true))
		assert.Equal(t, fsapi.StatusDenied, d.FileGetError(h))
	})
}

func TestEjectAndMount(t *testing.T) {
	d := devsim.New()
	h := openHandle(t, d, "/data.bin", fsapi.AccessRead|fsapi.AccessWrite, fsapi.CreateNew)
	defer d.FileClose(h)

	d.Eject()

	require.Equal(t, 0, d.FileWrite(h, []byte("x")))
	assert.Equal(t, fsapi.StatusNotReady, d.FileGetError(h))
	require.False(t, d.FileSync(h))

	h2 := d.FileAlloc()
	require.False(t, d.FileOpen(h2, "/other.bin", fsapi.AccessWrite, fsapi.CreateNew))
	assert.Equal(t, fsapi.StatusNotReady, d.FileGetError(h2))
	require.True(t, d.FileClose(h2))

	d.Mount()

	require.Equal(t, 1, d.FileWrite(h, []byte("x")))
	assert.Equal(t, fsapi.StatusOK, d.FileGetError(h))
}

func TestHandleLifecycle(t *testing.T) {
	d := devsim.New()

	h := d.FileAlloc()
	assert.Equal(t, 1, d.HandleCount())
	assert.Equal(t, 0, d.OpenFileCount())

	// A failed open leaves the handle allocated until it is closed.
	require.False(t, d.FileOpen(h, "/missing.bin", fsapi.AccessRead, fsapi.OpenExisting))
	assert.Equal(t, 1, d.HandleCount())
	assert.Equal(t, 0, d.OpenFileCount())

	require.True(t, d.FileClose(h))
	assert.Equal(t, 0, d.HandleCount())

	// Closing a released handle reports failure.
	assert.False(t, d.FileClose(h))
}

func TestPathRules(t *testing.T) {
	t.Run("invalid characters", func(t *testing.T) {
		d := devsim.New()
		for _, path := range []string{`/bad*name`, `/bad?`, `/a|b`, "/ctl\x01", "relative.bin", ""} {
			h := d.FileAlloc()
			require.False(t, d.FileOpen(h, path, fsapi.AccessWrite, fsapi.CreateNew), "path %q", path)
			if path != "" && path[0] == '/' {
				assert.Equal(t, fsapi.StatusInvalidName, d.FileGetError(h), "path %q", path)
			}
			require.True(t, d.FileClose(h))
		}
	})

	t.Run("missing parent directory", func(t *testing.T) {
		d := devsim.New()
		h := d.FileAlloc()
		require.False(t, d.FileOpen(h, "/ext/data.bin", fsapi.AccessWrite, fsapi.CreateNew))
		assert.Equal(t, fsapi.StatusNotExists, d.FileGetError(h))
		require.True(t, d.FileClose(h))

		require.NoError(t, d.MkDir("/ext"))
		h = openHandle(t, d, "/ext/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		require.True(t, d.FileClose(h))
	})

	t.Run("directory cannot be opened as file", func(t *testing.T) {
		d := devsim.New()
		require.NoError(t, d.MkDir("/ext"))

		h := d.FileAlloc()
		require.False(t, d.FileOpen(h, "/ext", fsapi.AccessRead, fsapi.OpenExisting))
		assert.Equal(t, fsapi.StatusNotExists, d.FileGetError(h))
		require.True(t, d.FileClose(h))
	})

	t.Run("second open of same path is rejected", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		h2 := d.FileAlloc()
		require.False(t, d.FileOpen(h2, "/data.bin", fsapi.AccessRead, fsapi.OpenExisting))
		assert.Equal(t, fsapi.StatusAlreadyOpen, d.FileGetError(h2))
		require.True(t, d.FileClose(h2))
	})
}

func TestFaultInjection(t *testing.T) {
	t.Run("fault fires once by default", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		d.Inject(devsim.Fault{Op: devsim.OpWrite, Status: fsapi.StatusInternal})

		require.Equal(t, 0, d.FileWrite(h, []byte("x")))
		assert.Equal(t, fsapi.StatusInternal, d.FileGetError(h))

		require.Equal(t, 1, d.FileWrite(h, []byte("x")))
		assert.Equal(t, fsapi.StatusOK, d.FileGetError(h))
	})

	t.Run("skip lets leading calls through", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		d.Inject(devsim.Fault{Op: devsim.OpSync, Status: fsapi.StatusInternal, Skip: 2})

		require.True(t, d.FileSync(h))
		require.True(t, d.FileSync(h))
		require.False(t, d.FileSync(h))
		assert.Equal(t, fsapi.StatusInternal, d.FileGetError(h))
	})

	t.Run("close fault still releases the handle", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)

		d.Inject(devsim.Fault{Op: devsim.OpClose, Status: fsapi.StatusInternal})

		require.False(t, d.FileClose(h))
		assert.Equal(t, 0, d.HandleCount())
	})

	t.Run("clear drops armed faults", func(t *testing.T) {
		d := devsim.New()
		h := openHandle(t, d, "/data.bin", fsapi.AccessWrite, fsapi.CreateNew)
		defer d.FileClose(h)

		d.Inject(devsim.Fault{Op: devsim.OpWrite, Status: fsapi.StatusInternal, Count: 10})
		d.ClearFaults()

		require.Equal(t, 1, d.FileWrite(h, []byte("x")))
	})
}

func TestStats(t *testing.T) {
	d := devsim.New()
	h := openHandle(t, d, "/data.bin", fsapi.AccessRead|fsapi.AccessWrite, fsapi.CreateNew)

	d.FileWrite(h, []byte("abc"))
	d.FileSeek(h, 0, true)
	d.FileRead(h, make([]byte, 3))
	d.FileTell(h)
	d.FileSize(h)
	d.FileSync(h)
	d.FileClose(h)

	stats := d.Stats()
	assert.Equal(t, int64(1), stats.Allocs)
	assert.Equal(t, int64(1), stats.Opens)
	assert.Equal(t, int64(1), stats.Writes)
	assert.Equal(t, int64(1), stats.Seeks)
	assert.Equal(t, int64(1), stats.Reads)
	assert.Equal(t, int64(1), stats.Tells)
	assert.Equal(t, int64(1), stats.Sizes)
	assert.Equal(t, int64(1), stats.Syncs)
	assert.Equal(t, int64(1), stats.Closes)
}

func TestErrorDesc(t *testing.T) {
	d := devsim.New()

	assert.Equal(t, "OK", string(d.ErrorDesc(fsapi.StatusOK)))
	assert.Equal(t, "access denied", string(d.ErrorDesc(fsapi.StatusDenied)))
	assert.Equal(t, "unknown error", string(d.ErrorDesc(fsapi.Status(99))))
}
