package fat12

// locateFreeSlot scans `dir` for its first free slot without growing the
// directory.
func (v *Volume) locateFreeSlot(dir Dir) (EntryRef, bool, error) {
	var free EntryRef
	found := false

	err := v.forEachEntry(dir, func(ref EntryRef, entry RawDirent) (bool, error) {
		if !entry.IsFree() {
			return false, nil
		}
		free = ref
		found = true
		return true, nil
	})
	return free, found, err
}

// slotReservation is a free slot picked for a new entry, together with
// whatever chain growth was needed to obtain it. Nothing is written to
// the slot until the caller stores an entry; undo reverses the growth.
type slotReservation struct {
	ref      EntryRef
	grew     bool
	growth   uint16
	prevTail uint16
}

// undo restores the directory chain to its pre-reservation shape. Safe to
// call only while the reserved slot is still free.
func (res slotReservation) undo(v *Volume) {
	if !res.grew {
		return
	}
	v.fat.Write(res.prevTail, FATEntryEOC)
	v.fat.Write(res.growth, FATEntryFree)
}

// reserveSlot finds a free slot in `dir`, extending the cluster chain by
// one zeroed cluster when every existing slot is taken. The fixed root
// cannot be extended; a full root is a full parent.
func (v *Volume) reserveSlot(dir Dir) (slotReservation, error) {
	ref, found, err := v.locateFreeSlot(dir)
	if err != nil {
		return slotReservation{}, err
	}
	if found {
		return slotReservation{ref: ref}, nil
	}

	if dir.IsRoot() {
		return slotReservation{}, ErrDirectoryFull.WithMessage(
			"the root directory holds a fixed number of entries")
	}

	chain, err := v.fat.Chain(dir.StartingCluster())
	if err != nil {
		return slotReservation{}, err
	}
	tail := chain[len(chain)-1]

	growth, err := v.fat.Allocate()
	if err != nil {
		return slotReservation{}, ErrDirectoryFull.WrapError(err)
	}
	zeroBytes(v.ClusterSlice(growth))
	v.fat.Write(tail, growth)

	return slotReservation{
		ref:      EntryRef{volume: v, offset: v.clusterOffset(growth)},
		grew:     true,
		growth:   growth,
		prevTail: tail,
	}, nil
}

// Mkdir creates a directory at an absolute path. The parent must already
// exist; the new directory gets one data cluster holding its "." and ".."
// entries.
func (v *Volume) Mkdir(path string) error {
	parent, name, err := v.ResolveParentAndName(path)
	if err != nil {
		return err
	}
	if err := validateEntryName(name); err != nil {
		return err
	}

	if _, _, exists, err := v.findEntry(parent, name); err != nil {
		return err
	} else if exists {
		return ErrExists.WithMessage(path)
	}

	reservation, err := v.reserveSlot(parent)
	if err != nil {
		return err
	}

	contents, err := v.fat.Allocate()
	if err != nil {
		reservation.undo(v)
		return err
	}

	now := NewTimestamp(nowFunc())
	entry := RawDirent{
		Attributes:      AttrDirectory,
		Created:         now,
		LastModified:    now,
		StartingCluster: contents,
	}
	entry.SetName(name)
	reservation.ref.Store(&entry)

	v.initDirectoryCluster(contents, &entry, parent)
	parent.touchModified()
	return nil
}

// initDirectoryCluster zeroes a new directory's first cluster and writes
// its "." and ".." entries: "." is the directory's own entry renamed,
// ".." is the parent's entry renamed, except that the root has no entry
// of its own and is represented by starting cluster 0.
func (v *Volume) initDirectoryCluster(cluster uint16, self *RawDirent, parent Dir) {
	data := v.ClusterSlice(cluster)
	zeroBytes(data)

	dot := *self
	dot.SetName(".")
	dot.PutBytes(data[0:DirentSize])

	var dotdot RawDirent
	if parent.IsRoot() {
		dotdot = RawDirent{
			Attributes:   AttrDirectory,
			Created:      self.Created,
			LastModified: self.LastModified,
		}
	} else {
		dotdot = parent.entry.Load()
	}
	dotdot.SetName("..")
	dotdot.PutBytes(data[DirentSize : 2*DirentSize])
}

// List resolves an absolute path to a directory and returns its non-free
// entries in traversal order.
func (v *Volume) List(path string) ([]Dirent, error) {
	dir, err := v.ResolveDir(path)
	if err != nil {
		return nil, err
	}

	entries := []Dirent{}
	err = v.forEachEntry(dir, func(ref EntryRef, entry RawDirent) (bool, error) {
		if !entry.IsFree() {
			entries = append(entries, NewDirentFromRaw(&entry))
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// countEntries gives the number of non-free entries in `dir`, not
// counting the "." and ".." pair of a subdirectory.
func (v *Volume) countEntries(dir Dir) (int, error) {
	count := 0
	err := v.forEachEntry(dir, func(ref EntryRef, entry RawDirent) (bool, error) {
		name := entry.NameString()
		if !entry.IsFree() && name != "." && name != ".." {
			count++
		}
		return false, nil
	})
	return count, err
}

func zeroBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
