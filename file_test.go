package flashgo_test

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flashgo"
	"github.com/hupe1980/flashgo/devsim"
	"github.com/hupe1980/flashgo/fsapi"
)

func TestFileWriteRewindRead(t *testing.T) {
	st, _ := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, 11, n)

	pos, err := flashgo.Position(f)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), pos)

	require.NoError(t, flashgo.Rewind(f))

	pos, err = flashgo.Position(f)
	require.NoError(t, err)
	assert.Zero(t, pos)

	buf := make([]byte, 11)
	n, err = f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 11, n)
	assert.Equal(t, []byte("hello world"), buf)

	// The next read is at the end of the file.
	_, err = f.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileEmpty(t *testing.T) {
	st, _ := newTestStorage(t)

	f, err := st.Create("/empty.bin")
	require.NoError(t, err)
	defer f.Close()

	size, err := f.Size()
	require.NoError(t, err)
	assert.Zero(t, size)

	length, err := flashgo.Length(f)
	require.NoError(t, err)
	assert.Zero(t, length)

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileZeroLengthTransfers(t *testing.T) {
	f := openScratchFile(t, "/data.bin", []byte("abc"))

	n, err := f.Read(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileSeek(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		f := openScratchFile(t, "/data.bin", []byte("abcdef"))

		pos, err := f.Seek(flashgo.SeekStart(4))
		require.NoError(t, err)
		assert.Equal(t, uint64(4), pos)

		buf := make([]byte, 2)
		_, err = f.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("ef"), buf)
	})

	t.Run("current forward and back", func(t *testing.T) {
		f := openScratchFile(t, "/data.bin", []byte("abcdef"))

		pos, err := f.Seek(flashgo.SeekCurrent(4))
		require.NoError(t, err)
		assert.Equal(t, uint64(4), pos)

		pos, err = f.Seek(flashgo.SeekCurrent(-3))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), pos)
	})

	t.Run("end", func(t *testing.T) {
		f := openScratchFile(t, "/data.bin", []byte("abcdef"))

		pos, err := f.Seek(flashgo.SeekEnd(-2))
		require.NoError(t, err)
		assert.Equal(t, uint64(4), pos)

		pos, err = f.Seek(flashgo.SeekEnd(0))
		require.NoError(t, err)
		assert.Equal(t, uint64(6), pos)
	})

	t.Run("before start fails", func(t *testing.T) {
		f := openScratchFile(t, "/data.bin", []byte("abcdef"))

		_, err := f.Seek(flashgo.SeekCurrent(-1))
		assert.ErrorIs(t, err, flashgo.ErrInvalidParameter)

		_, err = f.Seek(flashgo.SeekEnd(-7))
		assert.ErrorIs(t, err, flashgo.ErrInvalidParameter)
	})

	t.Run("offset beyond native width fails", func(t *testing.T) {
		f := openScratchFile(t, "/data.bin", []byte("abcdef"))

		_, err := f.Seek(flashgo.SeekStart(1 << 40))
		require.ErrorIs(t, err, flashgo.ErrInvalidParameter)

		var pathErr *fs.PathError
		require.ErrorAs(t, err, &pathErr)
		assert.Equal(t, "seek", pathErr.Op)
		assert.Equal(t, "/data.bin", pathErr.Path)
	})
}

// TestFileSeekCurrentZero verifies that a zero-displacement seek reports the
// same position as Position and touches nothing on the device: the call is
// answered from the position query alone.
func TestFileSeekCurrentZero(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("abcdef"))
	require.NoError(t, err)

	want, err := flashgo.Position(f)
	require.NoError(t, err)

	before := dev.Stats()
	got, err := f.Seek(flashgo.SeekCurrent(0))
	require.NoError(t, err)
	after := dev.Stats()

	assert.Equal(t, want, got)
	assert.Equal(t, before.Seeks, after.Seeks, "no native seek expected")
	assert.Equal(t, before.Writes, after.Writes)
	assert.Equal(t, before.Reads, after.Reads)
}

// TestFileSizeAvoidsSeeks verifies the Sizer fast path: Length answers from
// the native size query without moving the stream position.
func TestFileSizeAvoidsSeeks(t *testing.T) {
	st, dev := newTestStorage(t)
	seedFile(t, st, "/data.bin", []byte("abcdef"))

	f, err := st.Open("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Seek(flashgo.SeekStart(2))
	require.NoError(t, err)

	before := dev.Stats()
	length, err := flashgo.Length(f)
	require.NoError(t, err)
	after := dev.Stats()

	assert.Equal(t, uint64(6), length)
	assert.Equal(t, before.Seeks, after.Seeks, "Length must not seek a Sizer")

	pos, err := flashgo.Position(f)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pos)
}

func TestFilePartialWriteOnFullMedium(t *testing.T) {
	st, _ := newTestStorage(t, devsim.WithBlockSize(16), devsim.WithCapacity(64))

	f, err := st.Create("/big.bin")
	require.NoError(t, err)
	defer f.Close()

	// A short count with a nil error is the disk-full pattern of the
	// medium; Write passes it through untouched.
	n, err := f.Write(make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, 64, n)

	// WriteAll refuses to spin on a stalled writer.
	err = flashgo.WriteAll(f, []byte("more"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestFileWriteAllConsumesEverything(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)

	payload := make([]byte, 2048)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, flashgo.WriteAll(f, payload))
	require.NoError(t, f.Close())

	data, ok := dev.FileBytes("/data.bin")
	require.True(t, ok)
	assert.Equal(t, payload, data)
}

func TestFileReadErrorSurfacesNativeStatus(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	dev.Inject(devsim.Fault{Op: devsim.OpRead, Status: fsapi.StatusInternal})

	_, err = f.Read(make([]byte, 4))
	require.ErrorIs(t, err, flashgo.ErrInternal)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "read", pathErr.Op)
	assert.Equal(t, "/data.bin", pathErr.Path)
}

func TestFileWriteErrorSurfacesNativeStatus(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	dev.Inject(devsim.Fault{Op: devsim.OpWrite, Status: fsapi.StatusDenied})

	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, flashgo.ErrDenied)
}

func TestFileSync(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Sync())
	require.NoError(t, f.Flush())

	dev.Inject(devsim.Fault{Op: devsim.OpSync, Status: fsapi.StatusInternal})
	assert.ErrorIs(t, f.Sync(), flashgo.ErrInternal)
}

func TestFileEjectedMedium(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	defer f.Close()

	dev.Eject()

	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, flashgo.ErrNotReady)

	_, err = f.Size()
	assert.ErrorIs(t, err, flashgo.ErrNotReady)

	dev.Mount()

	_, err = f.Write([]byte("x"))
	assert.NoError(t, err)
}

func TestFileClosedGuards(t *testing.T) {
	st, _ := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, flashgo.ErrFileClosed)

	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, flashgo.ErrFileClosed)

	_, err = f.Seek(flashgo.SeekStart(0))
	assert.ErrorIs(t, err, flashgo.ErrFileClosed)

	_, err = f.Size()
	assert.ErrorIs(t, err, flashgo.ErrFileClosed)

	assert.ErrorIs(t, f.Sync(), flashgo.ErrFileClosed)
	assert.ErrorIs(t, f.Close(), flashgo.ErrFileClosed)

	// The taxonomy alias lines up with the standard sentinel.
	assert.True(t, errors.Is(f.Sync(), fs.ErrClosed))
}

func TestFilePath(t *testing.T) {
	f := openScratchFile(t, "/ext/../data.bin", nil)
	assert.Equal(t, "/ext/../data.bin", f.Path())
}
