package flashgo_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flashgo"
	"github.com/hupe1980/flashgo/devsim"
)

func TestIOFileCopy(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/report.txt")
	require.NoError(t, err)

	n, err := io.Copy(f.IO(), strings.NewReader("status: nominal\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(16), n)
	require.NoError(t, f.Close())

	f, err = st.Open("/report.txt")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f.IO())
	require.NoError(t, err)
	assert.Equal(t, "status: nominal\n", string(data))
	assert.Equal(t, 1, dev.OpenFileCount())
}

func TestIOFileSeekWhence(t *testing.T) {
	f := openScratchFile(t, "/data.bin", []byte("abcdef"))
	a := f.IO()

	pos, err := a.Seek(4, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	pos, err = a.Seek(-2, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	pos, err = a.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	_, err = a.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, flashgo.ErrInvalidParameter)

	_, err = a.Seek(0, 42)
	assert.ErrorIs(t, err, flashgo.ErrInvalidParameter)
}

func TestIOFileWriteIsStrict(t *testing.T) {
	st, _ := newTestStorage(t, devsim.WithBlockSize(16), devsim.WithCapacity(32))

	f, err := st.Create("/small.bin")
	require.NoError(t, err)
	defer f.Close()

	// The medium accepts 32 bytes; io.Writer must not report a short
	// count silently.
	n, err := f.IO().Write(make([]byte, 100))
	require.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 32, n)
}

func TestIOFileCloseClosesFile(t *testing.T) {
	st, dev := newTestStorage(t)

	f, err := st.Create("/data.bin")
	require.NoError(t, err)

	require.NoError(t, f.IO().Close())
	assert.Equal(t, 0, dev.HandleCount())
	assert.ErrorIs(t, f.Close(), flashgo.ErrFileClosed)
}
