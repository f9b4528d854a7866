// Package fat12 implements a self-contained FAT12 volume engine over a
// single image file: boot sector and directory entry serialization, the
// 12-bit packed allocation table, cluster-chain traversal, and the
// directory and file operations built on them.
//
// The whole image lives in one in-memory buffer with exclusive ownership.
// Operations mutate the buffer synchronously; Flush writes it back in one
// piece, so the on-disk file only ever shows the state before or after a
// session, never a partial one.
package fat12

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xaionaro-go/bytesextra"
)

// Volume is an open FAT12 image: the backing buffer, the decoded boot
// sector with its region offsets, and the live FAT view.
type Volume struct {
	path   string
	buffer []byte
	boot   *BootSector
	fat    FAT
}

// Load reads the whole image file into memory and validates its layout.
// The file is closed immediately; nothing touches it again until Flush.
func Load(path string) (*Volume, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrIOFailed.WrapError(err)
	}
	if len(buffer) < BootSectorSize {
		return nil, ErrCorruptedImage.WithMessage(
			"image is smaller than a boot sector")
	}

	boot, err := NewBootSectorFromStream(
		bytesextra.NewReadWriteSeeker(buffer), len(buffer))
	if err != nil {
		return nil, err
	}

	return newVolume(path, buffer, boot), nil
}

func newVolume(path string, buffer []byte, boot *BootSector) *Volume {
	volume := &Volume{
		path:   path,
		buffer: buffer,
		boot:   boot,
	}
	volume.fat = NewFAT(
		buffer[boot.FAT1Start:boot.FAT2Start], boot.ClusterCapacity)
	return volume
}

// Boot exposes the decoded boot sector.
func (v *Volume) Boot() *BootSector {
	return v.boot
}

// FAT exposes the live (first) FAT copy.
func (v *Volume) FAT() FAT {
	return v.fat
}

// Stream wraps the in-memory image in an io.ReadWriteSeeker. The view
// aliases the buffer; it is not stable across Flush-and-reload.
func (v *Volume) Stream() io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(v.buffer)
}

// Flush mirrors the live FAT into the second copy and writes the buffer
// back to the image path, going through a sibling temp file so a failed
// write leaves the previous on-disk image intact.
func (v *Volume) Flush() error {
	v.mirrorFAT()

	dir := filepath.Dir(v.path)
	tmp, err := os.CreateTemp(dir, ".fat12-flush-*")
	if err != nil {
		return ErrFlushFailed.WrapError(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(v.buffer); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ErrFlushFailed.WrapError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ErrFlushFailed.WrapError(err)
	}
	if err := os.Rename(tmpName, v.path); err != nil {
		os.Remove(tmpName)
		return ErrFlushFailed.WrapError(err)
	}
	return nil
}

// mirrorFAT copies the live FAT over the second copy so both are
// byte-identical on disk.
func (v *Volume) mirrorFAT() {
	copy(
		v.buffer[v.boot.FAT2Start:v.boot.RootDirStart],
		v.buffer[v.boot.FAT1Start:v.boot.FAT2Start],
	)
}

////////////////////////////////////////////////////////////////////////////////
// Region map

// clusterOffset translates a cluster index to an absolute byte offset in
// the image buffer. The data area's address space starts at logical
// cluster 0 even though the allocator never hands out indices below 2.
func (v *Volume) clusterOffset(cluster uint16) int {
	return v.boot.DataAreaStart + int(cluster)*v.boot.BlockSize
}

// ClusterSlice gives a writable view of one cluster's bytes.
func (v *Volume) ClusterSlice(cluster uint16) []byte {
	start := v.clusterOffset(cluster)
	return v.buffer[start : start+v.boot.BlockSize]
}

// isRootRegion reports whether a buffer offset falls inside the fixed
// root directory rather than the data area.
func (v *Volume) isRootRegion(offset int) bool {
	return offset >= v.boot.RootDirStart && offset < v.boot.DataAreaStart
}

////////////////////////////////////////////////////////////////////////////////
// Entry references

// EntryRef addresses one 32-byte directory slot inside the image buffer.
// It stays valid until an operation rewrites the slot; holding one across
// a mutating call is not supported.
type EntryRef struct {
	volume *Volume
	offset int
}

// Load decodes the slot's current contents.
func (r EntryRef) Load() RawDirent {
	return NewRawDirentFromBytes(r.volume.buffer[r.offset : r.offset+DirentSize])
}

// Store encodes `entry` into the slot.
func (r EntryRef) Store(entry *RawDirent) {
	entry.PutBytes(r.volume.buffer[r.offset : r.offset+DirentSize])
}

// InRoot reports whether the slot lives in the fixed root directory.
func (r EntryRef) InRoot() bool {
	return r.volume.isRootRegion(r.offset)
}

// Dir is a handle on a directory: either the fixed root (entry == nil) or
// a subdirectory named by a directory entry.
type Dir struct {
	volume *Volume
	entry  *EntryRef
}

// RootDir returns the handle for the fixed root directory.
func (v *Volume) RootDir() Dir {
	return Dir{volume: v}
}

// IsRoot reports whether the handle names the fixed root directory.
func (d Dir) IsRoot() bool {
	return d.entry == nil
}

// StartingCluster gives the first cluster of a subdirectory's chain. The
// root has no cluster chain; callers must branch on IsRoot first.
func (d Dir) StartingCluster() uint16 {
	return d.entry.Load().StartingCluster
}

// touchModified refreshes the directory's last-modification timestamp.
// The root has no entry of its own to update.
func (d Dir) touchModified() {
	if d.IsRoot() {
		return
	}
	entry := d.entry.Load()
	entry.LastModified = NewTimestamp(nowFunc())
	d.entry.Store(&entry)
}
