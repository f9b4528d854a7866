package fat12

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
)

// BootSectorSize is the number of bytes the boot sector occupies at the
// head of the image.
const BootSectorSize = 36

// Geometry defaults shared by every image this engine formats. Sector size
// is fixed; block (cluster) size varies through SectorsPerCluster.
const (
	DefaultBytesPerSector  = 512
	DefaultReservedSectors = 1
	DefaultNumFATs         = 2
	DefaultRootEntryCount  = 224
	DefaultSectorsPerFAT   = 9
	MediaRemovable         = 0xF0
	MediaNonRemovable      = 0xF8
)

// OEMName identifies images produced by this engine.
var OEMName = [8]byte{'G', 'T', 'U', 'F', 'A', 'T', '1', '2'}

// totalClusterAddresses is the number of cluster addresses a 12-bit FAT
// can express.
const totalClusterAddresses = 1 << 12

// RawBootSector is the on-disk representation of the boot sector,
// little-endian, exactly BootSectorSize bytes on the wire.
type RawBootSector struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT16   uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
}

// BootSector extends RawBootSector with the region offsets and capacities
// every operation needs. They are computed once, at load or format time.
type BootSector struct {
	RawBootSector

	// BlockSize is the size of one cluster in bytes.
	BlockSize int

	// FATSizeBytes is the size of a single FAT copy.
	FATSizeBytes int

	// Region offsets into the image buffer, in layout order.
	FAT1Start     int
	FAT2Start     int
	RootDirStart  int
	DataAreaStart int

	// TotalSizeBytes is the size of the whole image.
	TotalSizeBytes int

	// EntriesPerCluster is how many 32-byte slots one cluster holds.
	EntriesPerCluster int

	// ClusterCapacity bounds the allocator: one past the highest cluster
	// index the FAT and the data area can both serve.
	ClusterCapacity uint16
}

// NewBootSectorFromStream decodes and validates the boot sector at the
// current stream position, then derives the region offsets. `imageSize` is
// the size of the backing buffer, used to bound the data area.
func NewBootSectorFromStream(reader io.Reader, imageSize int) (*BootSector, error) {
	raw := RawBootSector{}
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return nil, ErrIOFailed.WrapError(err)
	}
	return newBootSector(raw, imageSize)
}

func newBootSector(raw RawBootSector, imageSize int) (*BootSector, error) {
	var problems *multierror.Error

	switch raw.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		problems = multierror.Append(problems, fmt.Errorf(
			"BytesPerSector must be 512, 1024, 2048, or 4096, got %d",
			raw.BytesPerSector))
	}

	// SectorsPerCluster must be 2^x with x in [0, 8)
	switch raw.SectorsPerCluster {
	case 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		problems = multierror.Append(problems, fmt.Errorf(
			"SectorsPerCluster must be a power of 2 in 1-128, got %d",
			raw.SectorsPerCluster))
	}

	if raw.NumFATs != DefaultNumFATs {
		problems = multierror.Append(problems, fmt.Errorf(
			"expected %d FAT copies, got %d", DefaultNumFATs, raw.NumFATs))
	}
	if raw.RootEntryCount == 0 {
		problems = multierror.Append(problems,
			fmt.Errorf("RootEntryCount is zero"))
	}
	if raw.SectorsPerFAT16 == 0 {
		problems = multierror.Append(problems,
			fmt.Errorf("SectorsPerFAT16 is zero"))
	}

	if err := problems.ErrorOrNil(); err != nil {
		return nil, ErrCorruptedImage.WrapError(err)
	}

	blockSize := int(raw.BytesPerSector) * int(raw.SectorsPerCluster)
	fatSize := int(raw.SectorsPerFAT16) * int(raw.BytesPerSector)

	boot := BootSector{
		RawBootSector:     raw,
		BlockSize:         blockSize,
		FATSizeBytes:      fatSize,
		FAT1Start:         int(raw.ReservedSectors) * int(raw.BytesPerSector),
		TotalSizeBytes:    imageSize,
		EntriesPerCluster: blockSize / DirentSize,
	}
	boot.FAT2Start = boot.FAT1Start + fatSize
	boot.RootDirStart = boot.FAT2Start + fatSize
	boot.DataAreaStart = boot.RootDirStart + int(raw.RootEntryCount)*DirentSize

	if boot.DataAreaStart+boot.BlockSize > imageSize {
		return nil, ErrCorruptedImage.WithMessage(fmt.Sprintf(
			"image of %d bytes is too small to hold a data area starting at %d",
			imageSize, boot.DataAreaStart))
	}
	if expected := int(raw.TotalSectors16) * int(raw.BytesPerSector); expected != imageSize {
		return nil, ErrCorruptedImage.WithMessage(fmt.Sprintf(
			"boot sector declares %d bytes but the image holds %d",
			expected, imageSize))
	}

	boot.ClusterCapacity = clusterCapacity(&boot)
	return &boot, nil
}

// clusterCapacity caps the allocator at whichever runs out first: 12-bit
// addresses, FAT entry slots, or physical data-area clusters.
func clusterCapacity(boot *BootSector) uint16 {
	capacity := boot.FATSizeBytes * 2 / 3
	if capacity > totalClusterAddresses {
		capacity = totalClusterAddresses
	}
	dataClusters := (boot.TotalSizeBytes - boot.DataAreaStart) / boot.BlockSize
	if capacity > dataClusters {
		capacity = dataClusters
	}
	return uint16(capacity)
}

// Encode serializes the raw boot sector at the current stream position.
func (boot *BootSector) Encode(writer io.Writer) error {
	if err := binary.Write(writer, binary.LittleEndian, &boot.RawBootSector); err != nil {
		return ErrIOFailed.WrapError(err)
	}
	return nil
}
