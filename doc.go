// Package flashgo provides typed access to the file storage service of
// embedded flash devices.
//
// The storage service of a target device exposes files through numeric
// handles and a latched per-handle status code. Flashgo wraps that surface in
// a small, safe API: files that cannot leak handles, an error taxonomy that
// composes with the standard errors package, and stream helpers that mirror
// the conventions of the io package without hiding the medium's quirks.
//
// # Quick Start
//
//	st, err := flashgo.New(dev) // dev implements fsapi.API
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := st.Create("/boot.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	if err := flashgo.WriteAll(f, []byte("system ready")); err != nil {
//	    log.Fatal(err)
//	}
//
// The fsapi.API value is the storage service handle of a real device;
// devsim.New provides a faithful in-memory stand-in for development and
// tests.
//
// # Error Handling
//
// Every native status code maps to a taxonomy sentinel (ErrNotExists,
// ErrDenied, ...). Operations return *fs.PathError values wrapping those
// sentinels, so call sites use the standard idioms:
//
//	f, err := st.Open("/settings.bin")
//	if errors.Is(err, flashgo.ErrNotExists) {
//	    f, err = st.Create("/settings.bin")
//	}
//
// # Files and Handles
//
// A File exclusively owns one native handle from allocation until Close.
// Failed opens release the handle internally, Close releases it exactly
// once, and a File that is garbage collected while still open has its handle
// reclaimed by a runtime cleanup. Handle leaks are a defect of the device
// protocol, not something callers manage.
//
// # Streams
//
// Read, write and seek follow the medium's native behavior: short reads and
// writes are legal and a full medium shortens writes silently. WriteAll,
// Rewind, Position and Length build the common full-transfer patterns on
// top. Seek takes a typed origin:
//
//	pos, err := f.Seek(flashgo.SeekEnd(-128))
//
// # Standard Library Interop
//
// File.IO adapts a file to the strict io.Reader, io.Writer, io.Seeker and
// io.Closer contracts for use with io.Copy, bufio and friends.
//
// # Key Features
//
//   - Total, bidirectional mapping of the native status taxonomy
//   - Handle ownership with leak-proof open and close paths
//   - Typed seek origins with native range checking
//   - Device-true simulation with fault injection (devsim)
//   - Firmware image capture, flash and verify (image)
//   - Pluggable image storage backends (imagestore: memory, local, S3, MinIO)
//   - Image catalogs with optimistic commits (catalog: memory, DynamoDB)
//   - Structured logging (slog) and pluggable metrics
package flashgo
