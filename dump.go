package fat12

import (
	"fmt"
	"io"
	posixpath "path"

	bitmap "github.com/boljen/go-bitmap"
)

// Walk visits every non-free entry reachable from the root in depth-first
// order, handing the callback the entry's absolute path. The synthesized
// "." and ".." entries are skipped.
func (v *Volume) Walk(visit func(path string, entry Dirent) error) error {
	return v.walkDir(v.RootDir(), "/", visit)
}

func (v *Volume) walkDir(
	dir Dir,
	prefix string,
	visit func(path string, entry Dirent) error,
) error {
	return v.forEachEntry(dir, func(ref EntryRef, entry RawDirent) (bool, error) {
		name := entry.NameString()
		if entry.IsFree() || name == "." || name == ".." {
			return false, nil
		}

		entryPath := posixpath.Join(prefix, name)
		if err := visit(entryPath, NewDirentFromRaw(&entry)); err != nil {
			return false, err
		}

		if entry.IsDirectory() {
			sub := Dir{volume: v, entry: &ref}
			if err := v.walkDir(sub, entryPath, visit); err != nil {
				return false, err
			}
		}
		return false, nil
	})
}

// Dumpe2fs writes the volume's geometry, region offsets, allocation
// counts, and per-entry cluster occupancy to `w`.
func (v *Volume) Dumpe2fs(w io.Writer) error {
	boot := v.boot

	fmt.Fprintln(w, "===================Boot Sector===============")
	fmt.Fprintf(w, "OEM Name: %s\n", boot.OEMName[:])
	fmt.Fprintf(w, "Bytes per Sector: %d\n", boot.BytesPerSector)
	fmt.Fprintf(w, "Sectors per Cluster: %d\n", boot.SectorsPerCluster)
	fmt.Fprintf(w, "Reserved Sectors: %d\n", boot.ReservedSectors)
	fmt.Fprintf(w, "Number of FATs: %d\n", boot.NumFATs)
	fmt.Fprintf(w, "Root Entry Count: %d\n", boot.RootEntryCount)
	fmt.Fprintf(w, "Total Sectors (16-bit): %d\n", boot.TotalSectors16)
	fmt.Fprintf(w, "Media Type: %#02x\n", boot.Media)
	fmt.Fprintf(w, "Sectors per FAT (16-bit): %d\n", boot.SectorsPerFAT16)
	fmt.Fprintln(w, "=============================================")

	fmt.Fprintf(w, "Block size: %d bytes\n", boot.BlockSize)
	fmt.Fprintf(w, "Total size: %d bytes\n", boot.TotalSizeBytes)
	fmt.Fprintf(w, "FAT1 start: %d\n", boot.FAT1Start)
	fmt.Fprintf(w, "FAT2 start: %d\n", boot.FAT2Start)
	fmt.Fprintf(w, "Root directory start: %d\n", boot.RootDirStart)
	fmt.Fprintf(w, "Data area start: %d\n", boot.DataAreaStart)

	capacity := int(v.fat.Capacity()) - fatReservedClusters
	free := v.fat.CountFree()
	fmt.Fprintf(w, "Cluster capacity: %d\n", capacity)
	fmt.Fprintf(w, "Free clusters: %d\n", free)
	fmt.Fprintf(w, "Used clusters: %d\n", capacity-free)

	directories := 0
	files := 0
	occupied := bitmap.New(int(v.fat.Capacity()))
	type occupant struct {
		cluster uint16
		path    string
	}
	occupants := []occupant{}

	err := v.Walk(func(path string, entry Dirent) error {
		if entry.IsDir() {
			directories++
		} else {
			files++
		}

		chain, err := v.fat.Chain(entry.StartingCluster)
		if err != nil {
			return err
		}
		for _, cluster := range chain {
			if occupied.Get(int(cluster)) {
				return ErrCorruptedImage.WithMessage(fmt.Sprintf(
					"cluster %d is claimed by more than one entry", cluster))
			}
			occupied.Set(int(cluster), true)
			occupants = append(occupants, occupant{cluster, path})
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Directories: %d\n", directories)
	fmt.Fprintf(w, "Files: %d\n", files)

	fmt.Fprintln(w, "Occupied clusters:")
	for _, o := range occupants {
		fmt.Fprintf(w, "  %4d  %s\n", o.cluster, o.path)
	}
	return nil
}
