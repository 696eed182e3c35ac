package flashgo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flashgo"
	"github.com/hupe1980/flashgo/devsim"
)

// newTestStorage returns a Storage backed by a fresh simulated device.
func newTestStorage(t *testing.T, optFns ...devsim.Option) (*flashgo.Storage, *devsim.Device) {
	t.Helper()

	dev := devsim.New(optFns...)
	st, err := flashgo.New(dev)
	require.NoError(t, err)
	return st, dev
}

// openScratchFile returns a read-write file seeded with data, positioned at
// the start. The file is closed when the test ends.
func openScratchFile(t *testing.T, path string, data []byte) *flashgo.File {
	t.Helper()

	st, _ := newTestStorage(t)

	f, err := flashgo.NewOpenOptions().
		Read(true).
		Write(true).
		CreateAlways(true).
		Open(st, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, flashgo.WriteAll(f, data))
	require.NoError(t, flashgo.Rewind(f))
	return f
}

// seedFile writes data to path and closes it again, leaving no open handles.
func seedFile(t *testing.T, st *flashgo.Storage, path string, data []byte) {
	t.Helper()

	f, err := st.Create(path)
	require.NoError(t, err)
	require.NoError(t, flashgo.WriteAll(f, data))
	require.NoError(t, f.Close())
}
