package fat12

import "fmt"

// DirIterator walks the 32-byte slots of one directory in traversal
// order. For the fixed root that is a single flat run of RootEntryCount
// slots; for subdirectories it follows the FAT chain cluster by cluster.
// Free slots come back as-is; filtering is the caller's job.
//
// The iterator aliases the image buffer. Any mutation that grows the
// chain being walked invalidates it.
type DirIterator struct {
	volume  *Volume
	isRoot  bool
	slot    int
	cluster uint16
}

// NewDirIterator positions an iterator at the first slot of `dir`.
func (v *Volume) NewDirIterator(dir Dir) *DirIterator {
	if dir.IsRoot() {
		return &DirIterator{volume: v, isRoot: true}
	}
	return v.NewClusterIterator(dir.StartingCluster())
}

// NewClusterIterator positions an iterator at the first slot of the chain
// rooted at `cluster`, for callers that hold a bare cluster index.
func (v *Volume) NewClusterIterator(cluster uint16) *DirIterator {
	return &DirIterator{volume: v, cluster: cluster}
}

// HasNext reports whether another slot remains: for the root, until the
// flat run is exhausted; for subdirectories, while the current cluster
// has slots left or the FAT chain continues.
func (it *DirIterator) HasNext() bool {
	if it.isRoot {
		return it.slot < int(it.volume.boot.RootEntryCount)
	}
	return it.slot < it.volume.boot.EntriesPerCluster ||
		!IsEOC(it.volume.fat.Read(it.cluster))
}

// Next returns the next slot, following the FAT chain across cluster
// boundaries. A link that is neither a data cluster nor end-of-chain
// means the table contradicts the directory and surfaces as corruption.
func (it *DirIterator) Next() (EntryRef, error) {
	if it.isRoot {
		ref := EntryRef{
			volume: it.volume,
			offset: it.volume.boot.RootDirStart + it.slot*DirentSize,
		}
		it.slot++
		return ref, nil
	}

	if it.slot >= it.volume.boot.EntriesPerCluster {
		next := it.volume.fat.Read(it.cluster)
		if !IsValidDataCluster(next) {
			return EntryRef{}, ErrCorruptedImage.WithMessage(fmt.Sprintf(
				"directory chain broken at cluster %d: link %#03x",
				it.cluster, next))
		}
		it.cluster = next
		it.slot = 0
	}

	ref := EntryRef{
		volume: it.volume,
		offset: it.volume.clusterOffset(it.cluster) + it.slot*DirentSize,
	}
	it.slot++
	return ref, nil
}

// forEachEntry walks every slot of `dir`, handing the callback the slot
// reference and its decoded contents. The callback returns true to stop.
func (v *Volume) forEachEntry(
	dir Dir,
	visit func(ref EntryRef, entry RawDirent) (stop bool, err error),
) error {
	it := v.NewDirIterator(dir)
	for it.HasNext() {
		ref, err := it.Next()
		if err != nil {
			return err
		}
		entry := ref.Load()
		stop, err := visit(ref, entry)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}
