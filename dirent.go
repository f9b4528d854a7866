package fat12

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"
)

// fatEpoch is 1980-01-01 00:00:00 at local time, the earliest date a FAT
// timestamp can represent.
var fatEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.Local)

// nowFunc supplies entry timestamps; tests substitute it for fixed dates.
var nowFunc = time.Now

const (
	// AttrReadable marks a directory entry as readable. This deviates from
	// legacy FAT, where bit 0x01 means read-only; this engine stores a
	// positive permission pair instead.
	AttrReadable = 0x01

	// AttrWritable marks a directory entry as writable. Legacy FAT uses
	// 0x02 for "hidden"; see AttrReadable for the deviation.
	AttrWritable = 0x02

	// AttrSystem marks a directory entry as essential to the operating
	// system. The engine never sets it but preserves it when found.
	AttrSystem = 0x04

	// AttrVolumeLabel marks an entry as holding the volume label. It must
	// reside in the root directory.
	AttrVolumeLabel = 0x08

	// AttrDirectory marks a directory entry as being a directory.
	AttrDirectory = 0x10

	// AttrArchive is used by backup tools to mark an entry as dirty.
	AttrArchive = 0x20

	// AttrPasswordProtected marks an entry whose password field is live.
	// The field is carried in every record but no operation sets the flag.
	AttrPasswordProtected = 0x40
)

// DirentSize is the size of a single raw directory entry, in bytes.
const DirentSize = 32

// Free-slot markers for the first name byte. FreeSlotNone additionally
// means no entry beyond this slot has ever been written.
const (
	FreeSlotDeleted = 0xE5
	FreeSlotNone    = 0x00
)

// Timestamp is the on-disk pair of FAT-encoded time and date words:
// time is HHHHHMMMMMMSSSSS (seconds halved), date is YYYYYYYMMMMDDDDD
// (years since 1980).
type Timestamp struct {
	Time uint16
	Date uint16
}

// NewTimestamp converts a time.Time into the on-disk representation.
// Times before the FAT epoch collapse to the epoch.
func NewTimestamp(t time.Time) Timestamp {
	if t.Before(fatEpoch) {
		t = fatEpoch
	}
	return Timestamp{
		Time: uint16(t.Hour()&0x1F)<<11 |
			uint16(t.Minute()&0x3F)<<5 |
			uint16((t.Second()/2)&0x1F),
		Date: uint16((t.Year()-1980)&0x7F)<<9 |
			uint16(int(t.Month())&0x0F)<<5 |
			uint16(t.Day()&0x1F),
	}
}

// AsTime converts the on-disk representation back into a time.Time in the
// local zone. Seconds come back rounded down to the nearest even value.
func (ts Timestamp) AsTime() time.Time {
	return time.Date(
		1980+int((ts.Date>>9)&0x7F),
		time.Month((ts.Date>>5)&0x0F),
		int(ts.Date&0x1F),
		int((ts.Time>>11)&0x1F),
		int((ts.Time>>5)&0x3F),
		int(ts.Time&0x1F)*2,
		0,
		time.Local,
	)
}

// RawDirent is the on-disk representation of a directory entry, broken down
// into its constituent fields. The wire layout is exactly DirentSize bytes.
type RawDirent struct {
	Name            [8]byte
	Extension       [3]byte
	Password        [6]byte
	Attributes      uint8
	Created         Timestamp
	LastModified    Timestamp
	StartingCluster uint16
	FileSize        uint32
}

// NewRawDirentFromBytes deserializes DirentSize bytes into a RawDirent.
func NewRawDirentFromBytes(data []byte) RawDirent {
	dirent := RawDirent{
		Attributes: data[17],
		Created: Timestamp{
			Time: binary.LittleEndian.Uint16(data[18:20]),
			Date: binary.LittleEndian.Uint16(data[20:22]),
		},
		LastModified: Timestamp{
			Time: binary.LittleEndian.Uint16(data[22:24]),
			Date: binary.LittleEndian.Uint16(data[24:26]),
		},
		StartingCluster: binary.LittleEndian.Uint16(data[26:28]),
		FileSize:        binary.LittleEndian.Uint32(data[28:32]),
	}
	copy(dirent.Name[:], data[0:8])
	copy(dirent.Extension[:], data[8:11])
	copy(dirent.Password[:], data[11:17])
	return dirent
}

// PutBytes serializes the entry into `data`, which must be at least
// DirentSize bytes long.
func (d *RawDirent) PutBytes(data []byte) {
	copy(data[0:8], d.Name[:])
	copy(data[8:11], d.Extension[:])
	copy(data[11:17], d.Password[:])
	data[17] = d.Attributes
	binary.LittleEndian.PutUint16(data[18:20], d.Created.Time)
	binary.LittleEndian.PutUint16(data[20:22], d.Created.Date)
	binary.LittleEndian.PutUint16(data[22:24], d.LastModified.Time)
	binary.LittleEndian.PutUint16(data[24:26], d.LastModified.Date)
	binary.LittleEndian.PutUint16(data[26:28], d.StartingCluster)
	binary.LittleEndian.PutUint32(data[28:32], d.FileSize)
}

// IsFree reports whether the slot holding this entry is unoccupied, i.e.
// the first name byte is FreeSlotNone or FreeSlotDeleted.
func (d *RawDirent) IsFree() bool {
	return d.Name[0] == FreeSlotNone || d.Name[0] == FreeSlotDeleted
}

// IsDirectory reports whether the directory attribute bit is set.
func (d *RawDirent) IsDirectory() bool {
	return d.Attributes&AttrDirectory != 0
}

// IsFile reports whether the entry names a regular file.
func (d *RawDirent) IsFile() bool {
	return !d.IsDirectory()
}

// IsReadable reports whether the readable permission bit is set.
func (d *RawDirent) IsReadable() bool {
	return d.Attributes&AttrReadable != 0
}

// IsWritable reports whether the writable permission bit is set.
func (d *RawDirent) IsWritable() bool {
	return d.Attributes&AttrWritable != 0
}

// NameString gives the space-trimmed name field. The comparison the path
// resolver performs is byte-exact on this trimmed value.
func (d *RawDirent) NameString() string {
	return strings.TrimRight(string(d.Name[:]), " ")
}

// SetName space-pads `name` into the 8-byte name field. The extension
// field is space-filled; names are stored raw, without 8.3 splitting.
func (d *RawDirent) SetName(name string) {
	copy(d.Name[:], blankName(name))
	copy(d.Extension[:], "   ")
}

func blankName(name string) []byte {
	padded := bytes.Repeat([]byte{' '}, 8)
	copy(padded, name)
	return padded
}

// validateEntryName rejects names the 8-byte field cannot hold. "." and
// ".." are reserved for the synthesized entries of a new directory.
func validateEntryName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrBadPath.WithMessage("invalid entry name " + name)
	}
	if strings.ContainsAny(name, "/") {
		return ErrBadPath.WithMessage("entry name contains a path separator")
	}
	if len(name) > 8 {
		return ErrNameTooLong.WithMessage(name)
	}
	return nil
}

// Dirent is a directory entry in a caller-friendly form, e.g. timestamps
// decoded to time.Time.
type Dirent struct {
	Name            string
	Attributes      uint8
	StartingCluster uint16
	Size            uint32
	Created         time.Time
	LastModified    time.Time
}

// NewDirentFromRaw cooks a RawDirent for listing and inspection use.
func NewDirentFromRaw(raw *RawDirent) Dirent {
	return Dirent{
		Name:            raw.NameString(),
		Attributes:      raw.Attributes,
		StartingCluster: raw.StartingCluster,
		Size:            raw.FileSize,
		Created:         raw.Created.AsTime(),
		LastModified:    raw.LastModified.AsTime(),
	}
}

// IsDir reports whether the cooked entry names a directory.
func (d Dirent) IsDir() bool {
	return d.Attributes&AttrDirectory != 0
}

// ModeString renders the permission pair the way directory listings show
// it, e.g. "rw", "r-", "--".
func (d Dirent) ModeString() string {
	mode := []byte{'-', '-'}
	if d.Attributes&AttrReadable != 0 {
		mode[0] = 'r'
	}
	if d.Attributes&AttrWritable != 0 {
		mode[1] = 'w'
	}
	return string(mode)
}
