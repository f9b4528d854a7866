// Package profiles holds the table of volume profiles this engine can
// format. Profiles are defined as data rather than code so the geometry
// of a supported image lives in one place.
package profiles

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Profile describes one supported volume shape. The cluster (block) size
// follows from the sector size times sectors per cluster; apart from the
// media byte, every other boot-sector parameter is fixed by the engine.
type Profile struct {
	Name              string  `csv:"name"`
	Slug              string  `csv:"slug"`
	BlockSizeKB       float64 `csv:"block_size_kb"`
	BytesPerSector    uint16  `csv:"bytes_per_sector"`
	SectorsPerCluster uint8   `csv:"sectors_per_cluster"`
	Media             uint8   `csv:"media"`
	Notes             string  `csv:"notes"`
}

// BlockSizeBytes gives the size of one cluster in bytes.
func (p *Profile) BlockSizeBytes() int {
	return int(p.BytesPerSector) * int(p.SectorsPerCluster)
}

// TotalSizeBytes gives the image size: one cluster per 12-bit address.
func (p *Profile) TotalSizeBytes() int {
	return p.BlockSizeBytes() * (1 << 12)
}

//go:embed volume-profiles.csv
var volumeProfilesRawCSV string
var volumeProfiles = map[string]Profile{}

// Get returns the profile registered under `slug`.
func Get(slug string) (Profile, error) {
	profile, ok := volumeProfiles[slug]
	if ok {
		return profile, nil
	}
	return Profile{}, fmt.Errorf("no volume profile exists with slug %q", slug)
}

// ForBlockSizeKB maps a block size in KB, as given on the command line,
// to its profile.
func ForBlockSizeKB(blockSizeKB float64) (Profile, error) {
	for _, profile := range volumeProfiles {
		if profile.BlockSizeKB == blockSizeKB {
			return profile, nil
		}
	}
	return Profile{}, fmt.Errorf(
		"no volume profile has a block size of %g KB", blockSizeKB)
}

func init() {
	reader := strings.NewReader(volumeProfilesRawCSV)
	err := gocsv.UnmarshalToCallback(
		reader,
		func(row Profile) error {
			_, exists := volumeProfiles[row.Slug]
			if exists {
				return fmt.Errorf(
					"duplicate definition for profile %q found on row %d",
					row.Slug,
					len(volumeProfiles)+1,
				)
			}
			volumeProfiles[row.Slug] = row
			return nil
		},
	)
	if err != nil && err != io.EOF {
		panic(err)
	}
}
