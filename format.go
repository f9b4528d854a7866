package fat12

import (
	"github.com/noxer/bytewriter"

	"github.com/eminakgun/fs-fat12/profiles"
)

// Format builds a fresh, empty image for the given profile in memory and
// returns it as an open volume bound to `path`. Nothing touches the disk
// until Flush.
//
// The buffer starts zero-filled, so the root directory and data area come
// out formatted for free; only the boot sector and the two FAT heads need
// explicit bytes.
func Format(path string, profile profiles.Profile) (*Volume, error) {
	totalBytes := profile.TotalSizeBytes()

	raw := RawBootSector{
		OEMName:           OEMName,
		BytesPerSector:    profile.BytesPerSector,
		SectorsPerCluster: profile.SectorsPerCluster,
		ReservedSectors:   DefaultReservedSectors,
		NumFATs:           DefaultNumFATs,
		RootEntryCount:    DefaultRootEntryCount,
		TotalSectors16:    uint16(totalBytes / int(profile.BytesPerSector)),
		Media:             profile.Media,
		SectorsPerFAT16:   DefaultSectorsPerFAT,
	}

	boot, err := newBootSector(raw, totalBytes)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, totalBytes)
	writer := bytewriter.New(buffer)
	if err := boot.Encode(writer); err != nil {
		return nil, err
	}

	volume := newVolume(path, buffer, boot)

	// FAT12 reserves the first two entries: the media descriptor, then a
	// hard end-of-chain.
	volume.fat.Write(0, 0xF00|uint16(profile.Media))
	volume.fat.Write(1, FATEntryEOC)
	volume.mirrorFAT()

	return volume, nil
}
