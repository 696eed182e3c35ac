package flashgo

import (
	"io"
	"io/fs"
	"math"
)

// IOFile adapts a File to the standard library's strict stream contracts.
//
// Where File.Write may report a legal short count, IOFile.Write loops until p
// is fully consumed or an error occurs, as io.Writer requires. Seek speaks
// (offset, whence) with the io.Seek* constants. This makes files compose with
// io.Copy, io.ReadAll, bufio and friends:
//
//	f, _ := st.Create("/logs/boot.txt")
//	defer f.Close()
//	_, err := io.Copy(f.IO(), strings.NewReader(report))
type IOFile struct {
	f *File
}

// IO returns an adapter exposing the file through io.Reader, io.Writer,
// io.Seeker and io.Closer. The adapter shares the file's handle and
// position; Close closes the underlying file.
func (f *File) IO() *IOFile {
	return &IOFile{f: f}
}

// Read implements io.Reader.
func (a *IOFile) Read(p []byte) (int, error) {
	return a.f.Read(p)
}

// Write implements io.Writer. Short writes surface as io.ErrShortWrite.
func (a *IOFile) Write(p []byte) (int, error) {
	return writeFull(a.f, p)
}

// Seek implements io.Seeker.
func (a *IOFile) Seek(offset int64, whence int) (int64, error) {
	var pos SeekFrom
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, &fs.PathError{Op: "seek", Path: a.f.path, Err: ErrInvalidParameter}
		}
		pos = SeekStart(uint64(offset))
	case io.SeekCurrent:
		pos = SeekCurrent(offset)
	case io.SeekEnd:
		pos = SeekEnd(offset)
	default:
		return 0, &fs.PathError{Op: "seek", Path: a.f.path, Err: ErrInvalidParameter}
	}

	n, err := a.f.Seek(pos)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, &fs.PathError{Op: "seek", Path: a.f.path, Err: ErrInvalidParameter}
	}
	return int64(n), nil
}

// Close implements io.Closer.
func (a *IOFile) Close() error {
	return a.f.Close()
}

var (
	_ io.Reader = (*IOFile)(nil)
	_ io.Writer = (*IOFile)(nil)
	_ io.Seeker = (*IOFile)(nil)
	_ io.Closer = (*IOFile)(nil)
)
