// Package devsim provides an in-memory implementation of the device storage
// call surface for development and testing.
//
// A Device behaves like the storage service of an embedded target with a FAT
// volume on a removable medium. It reproduces the quirks host code has to
// survive in the field:
//
//   - Per-handle error latch. Calls report success or failure; the cause is
//     read separately through FileGetError.
//   - Disk-full writes. A write that exhausts the free block pool keeps the
//     prefix that fits and still reports OK, so callers must check counts.
//   - Seek past the end. Writable handles extend the file with zeros,
//     read-only handles clamp to the end.
//   - Removable media. Eject makes every subsequent call fail with
//     StatusNotReady until Mount.
//
// Fault injection and call counters make failure paths testable:
//
//	dev := devsim.New(devsim.WithCapacity(64 << 10))
//	dev.Inject(devsim.Fault{Op: devsim.OpWrite, Status: fsapi.StatusInternal})
//
// Block accounting is backed by a roaring bitmap, so large sparse volumes
// stay cheap to simulate.
package devsim
