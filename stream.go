package flashgo

import (
	"fmt"
	"io"
)

// Reader is the reading side of a device stream.
//
// Read fills up to len(p) bytes and returns the count. Short reads are legal
// even when more data remains. End of stream is reported as io.EOF, matching
// the standard library convention.
type Reader interface {
	Read(p []byte) (n int, err error)
}

// Writer is the writing side of a device stream.
//
// Write consumes up to len(p) bytes and returns the count. Unlike io.Writer,
// a short count with a nil error is legal at this level: the storage medium
// reports partial writes with a clean status when it runs out of space. Use
// WriteAll, or the io adapter obtained from File.IO, when full consumption is
// required.
//
// Flush is a no-op for device streams; the service syncs on close and
// File.Sync forces a sync on demand.
type Writer interface {
	Write(p []byte) (n int, err error)
	Flush() error
}

// Seeker repositions a device stream.
//
// Seek applies pos and returns the new absolute position. Implementations
// must keep Seek(SeekCurrent(0)) free of side effects beyond reporting the
// position.
type Seeker interface {
	Seek(pos SeekFrom) (uint64, error)
}

// Sizer is an optional fast path for Length. Streams that know their size
// without seeking, such as File, implement it.
type Sizer interface {
	Size() (uint64, error)
}

// SeekFrom describes a seek target. It is a closed sum of three variants:
// SeekStart (absolute offset from the start), SeekEnd and SeekCurrent
// (signed offsets relative to the end or the current position). Implementers
// of Seeker deconstruct it with a type switch:
//
//	switch p := pos.(type) {
//	case flashgo.SeekStart:
//	    target = uint64(p)
//	case flashgo.SeekEnd:
//	    target = size + uint64(p)
//	case flashgo.SeekCurrent:
//	    target = cur + uint64(p)
//	}
type SeekFrom interface {
	isSeekFrom()
	String() string
}

// SeekStart positions at an absolute offset from the start of the stream.
type SeekStart uint64

// SeekEnd positions relative to the end of the stream. Negative offsets
// address bytes before the end.
type SeekEnd int64

// SeekCurrent positions relative to the current position.
type SeekCurrent int64

func (SeekStart) isSeekFrom()   {}
func (SeekEnd) isSeekFrom()     {}
func (SeekCurrent) isSeekFrom() {}

func (s SeekStart) String() string   { return fmt.Sprintf("start+%d", uint64(s)) }
func (s SeekEnd) String() string     { return fmt.Sprintf("end%+d", int64(s)) }
func (s SeekCurrent) String() string { return fmt.Sprintf("current%+d", int64(s)) }

// Rewind repositions s at the start of the stream.
func Rewind(s Seeker) error {
	_, err := s.Seek(SeekStart(0))
	return err
}

// Position reports the current stream position without moving it.
func Position(s Seeker) (uint64, error) {
	return s.Seek(SeekCurrent(0))
}

// Length reports the total length of the stream.
//
// When s implements Sizer the size query is used directly. Otherwise the
// length is learned by seeking to the end and the original position is
// restored, unless the stream was already positioned there.
func Length(s Seeker) (uint64, error) {
	if sz, ok := s.(Sizer); ok {
		return sz.Size()
	}

	old, err := Position(s)
	if err != nil {
		return 0, err
	}

	end, err := s.Seek(SeekEnd(0))
	if err != nil {
		return 0, err
	}

	if old != end {
		if _, err := s.Seek(SeekStart(old)); err != nil {
			return 0, err
		}
	}

	return end, nil
}

// WriteAll writes p to w in full, looping over partial writes.
//
// It fails on the first write error. A write that consumes nothing while data
// remains returns io.ErrShortWrite instead of looping forever.
func WriteAll(w Writer, p []byte) error {
	_, err := writeFull(w, p)
	return err
}

func writeFull(w Writer, p []byte) (int, error) {
	var written int
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}
