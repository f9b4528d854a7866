package fat12

import (
	"fmt"
	"os"
)

// hostAttributes maps a host file's user read/write permission bits onto
// the entry attribute pair.
func hostAttributes(mode os.FileMode) uint8 {
	var attributes uint8
	if mode&0400 != 0 {
		attributes |= AttrReadable
	}
	if mode&0200 != 0 {
		attributes |= AttrWritable
	}
	return attributes
}

// WriteFile imports a host file into the image at an absolute path. The
// content goes into a freshly allocated cluster chain; the host's user
// read/write bits become the entry's permission pair.
func (v *Volume) WriteFile(imagePath, hostPath string) error {
	content, err := os.ReadFile(hostPath)
	if err != nil {
		return ErrIOFailed.WrapError(err)
	}
	info, err := os.Stat(hostPath)
	if err != nil {
		return ErrIOFailed.WrapError(err)
	}

	parent, name, err := v.ResolveParentAndName(imagePath)
	if err != nil {
		return err
	}
	if err := validateEntryName(name); err != nil {
		return err
	}

	if _, _, exists, err := v.findEntry(parent, name); err != nil {
		return err
	} else if exists {
		return ErrExists.WithMessage(imagePath)
	}

	reservation, err := v.reserveSlot(parent)
	if err != nil {
		return err
	}

	// An empty file still owns one cluster so the entry has a chain to
	// point at.
	blockSize := v.boot.BlockSize
	clusters := (len(content) + blockSize - 1) / blockSize
	if clusters == 0 {
		clusters = 1
	}

	chain, err := v.fat.ChainAllocate(clusters)
	if err != nil {
		reservation.undo(v)
		return err
	}

	for i, cluster := range chain {
		data := v.ClusterSlice(cluster)
		zeroBytes(data)
		start := i * blockSize
		end := start + blockSize
		if end > len(content) {
			end = len(content)
		}
		copy(data, content[start:end])
	}

	now := NewTimestamp(nowFunc())
	entry := RawDirent{
		Attributes:      hostAttributes(info.Mode()),
		Created:         now,
		LastModified:    now,
		StartingCluster: chain[0],
		FileSize:        uint32(len(content)),
	}
	entry.SetName(name)
	reservation.ref.Store(&entry)

	parent.touchModified()
	return nil
}

// ReadFile exports an image file's content to a host file. The entry must
// carry the readable bit; exactly FileSize bytes leave the chain, never
// the tail cluster's padding.
func (v *Volume) ReadFile(imagePath, hostPath string) error {
	entry, _, err := v.lookupFile(imagePath)
	if err != nil {
		return err
	}
	if !entry.IsReadable() {
		return ErrPermissionDenied.WithMessage(fmt.Sprintf(
			"%s has no read permission", imagePath))
	}

	content, err := v.readChain(&entry)
	if err != nil {
		return err
	}
	if err := os.WriteFile(hostPath, content, 0o644); err != nil {
		return ErrIOFailed.WrapError(err)
	}
	return nil
}

// readChain collects an entry's content by walking its cluster chain.
func (v *Volume) readChain(entry *RawDirent) ([]byte, error) {
	chain, err := v.fat.Chain(entry.StartingCluster)
	if err != nil {
		return nil, err
	}

	content := make([]byte, 0, entry.FileSize)
	remaining := int(entry.FileSize)
	for _, cluster := range chain {
		if remaining <= 0 {
			break
		}
		data := v.ClusterSlice(cluster)
		if remaining < len(data) {
			data = data[:remaining]
		}
		content = append(content, data...)
		remaining -= len(data)
	}
	if remaining > 0 {
		return nil, ErrCorruptedImage.WithMessage(fmt.Sprintf(
			"chain ends %d bytes short of the declared size", remaining))
	}
	return content, nil
}

// Chmod applies a permission change of the form "+rw", "-r", "+w" and so
// on: '+' sets the named bits, '-' clears them.
func (v *Volume) Chmod(imagePath, perms string) error {
	set, mask, err := parsePermSpec(perms)
	if err != nil {
		return err
	}

	_, ref, err := v.lookupFile(imagePath)
	if err != nil {
		return err
	}

	entry := ref.Load()
	if set {
		entry.Attributes |= mask
	} else {
		entry.Attributes &^= mask
	}
	ref.Store(&entry)
	return nil
}

func parsePermSpec(perms string) (set bool, mask uint8, err error) {
	if len(perms) < 2 {
		return false, 0, ErrBadPath.WithMessage(fmt.Sprintf(
			"invalid permission spec %q", perms))
	}
	switch perms[0] {
	case '+':
		set = true
	case '-':
		set = false
	default:
		return false, 0, ErrBadPath.WithMessage(fmt.Sprintf(
			"permission spec %q must start with '+' or '-'", perms))
	}

	for _, flag := range perms[1:] {
		switch flag {
		case 'r':
			mask |= AttrReadable
		case 'w':
			mask |= AttrWritable
		default:
			return false, 0, ErrBadPath.WithMessage(fmt.Sprintf(
				"unknown permission flag %q", flag))
		}
	}
	return set, mask, nil
}

// Delete removes a file or an empty directory: the chain is released and
// the slot's first name byte becomes the deleted marker.
func (v *Volume) Delete(path string) error {
	parent, name, err := v.ResolveParentAndName(path)
	if err != nil {
		return err
	}

	ref, entry, found, err := v.findEntry(parent, name)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound.WithMessage(path)
	}

	if entry.IsDirectory() {
		dir := Dir{volume: v, entry: &ref}
		count, err := v.countEntries(dir)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDirectoryNotEmpty.WithMessage(path)
		}
	}

	if err := v.fat.FreeChain(entry.StartingCluster); err != nil {
		return err
	}
	entry.Name[0] = FreeSlotDeleted
	ref.Store(&entry)

	parent.touchModified()
	return nil
}

// lookupFile resolves an absolute path to a non-directory entry, handing
// back both the decoded entry and its slot.
func (v *Volume) lookupFile(imagePath string) (RawDirent, EntryRef, error) {
	parent, name, err := v.ResolveParentAndName(imagePath)
	if err != nil {
		return RawDirent{}, EntryRef{}, err
	}

	ref, entry, found, err := v.findEntry(parent, name)
	if err != nil {
		return RawDirent{}, EntryRef{}, err
	}
	if !found {
		return RawDirent{}, EntryRef{}, ErrNotFound.WithMessage(imagePath)
	}
	if entry.IsDirectory() {
		return RawDirent{}, EntryRef{}, ErrIsADirectory.WithMessage(imagePath)
	}
	return entry, ref, nil
}
