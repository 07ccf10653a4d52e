package vhd

// Footer is the trailing hard disk footer of a VHD. 512 bytes, every
// multi-byte field big-endian.
// https://download.microsoft.com/download/f/f/e/ffef50a5-07dd-4cf8-aaa3-442c0673a029/Virtual%20Hard%20Disk%20Format%20Spec_10_18_06.doc
type Footer struct {
	Cookie             [8]byte
	Features           uint32
	FileFormatVersion  uint32
	DataOffset         uint64
	TimeStamp          uint32
	CreatorApplication [4]byte
	CreatorVersion     uint32
	CreatorHostOS      [4]byte
	OriginalSize       uint64
	CurrentSize        uint64
	DiskGeometry       uint32
	DiskType           uint32
	Checksum           uint32
	UniqueID           [16]byte
	SavedState         byte
	Reserved           [427]byte
}

const (
	// FooterSize is the encoded size of a Footer.
	FooterSize = 512

	FeaturesReserved = 0x00000002
	FileFormatV1     = 0x00010000

	// DataOffsetFixed marks a disk with no block allocation table.
	DataOffsetFixed = 0xFFFFFFFFFFFFFFFF

	TypeFixedHardDisk   = 2
	TypeDynamicHardDisk = 3
	TypeDifferHardDisk  = 4

	// VHD timestamps count from 2000-01-01T00:00:00Z
	secondsSinceJan2000 = 946684800

	checksumOffset = 64
)

var (
	cookie        = [8]byte{'c', 'o', 'n', 'e', 'c', 't', 'i', 'x'}
	hostOSWindows = [4]byte{'W', 'i', '2', 'k'}
)
