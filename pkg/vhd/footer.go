package vhd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/huoxudong125/rufus/pkg/elog"
)

// packed major<<16 | minor of the producing tool
const creatorVersion = 0x00010000

// NewFooter builds a fixed-disk footer describing a raw image of the given
// size in bytes. The creator tag is truncated or padded to four characters.
// If unique ID generation fails the ID is left zeroed rather than failing the
// whole footer.
func NewFooter(size int64, creator string) *Footer {
	f := &Footer{
		Cookie:            cookie,
		Features:          FeaturesReserved,
		FileFormatVersion: FileFormatV1,
		DataOffset:        DataOffsetFixed,
		TimeStamp:         uint32(time.Now().Unix() - secondsSinceJan2000),
		CreatorVersion:    creatorVersion,
		CreatorHostOS:     hostOSWindows,
		OriginalSize:      uint64(size),
		CurrentSize:       uint64(size),
		DiskType:          TypeFixedHardDisk,
	}
	copy(f.CreatorApplication[:], creator)

	cylinders, heads, sectorsPerTrack := chsGeometry(size)
	f.DiskGeometry = uint32(cylinders)<<16 | uint32(heads)<<8 | uint32(sectorsPerTrack)

	id, err := uuid.NewRandom()
	if err == nil {
		copy(f.UniqueID[:], id[:])
	}

	return f
}

// Geometry unpacks the CHS view of the packed geometry field.
func (f *Footer) Geometry() (cylinders uint16, heads, sectors uint8) {
	return uint16(f.DiskGeometry >> 16), uint8(f.DiskGeometry >> 8), uint8(f.DiskGeometry)
}

// chsGeometry computes legacy cylinder/head/sector addressing for a raw image
// of the given byte size, as per the VHD specification.
func chsGeometry(size int64) (uint16, uint8, uint8) {
	var heads, sectorsPerTrack int64
	var cylinderTimesHeads int64

	totalSectors := size / 512
	if totalSectors > 65535*16*255 {
		totalSectors = 65535 * 16 * 255
	}

	if totalSectors >= 65535*16*63 {
		sectorsPerTrack = 255
		heads = 16
		cylinderTimesHeads = totalSectors / sectorsPerTrack
	} else {
		sectorsPerTrack = 17
		cylinderTimesHeads = totalSectors / sectorsPerTrack

		heads = (cylinderTimesHeads + 1023) / 1024
		if heads < 4 {
			heads = 4
		}
		if cylinderTimesHeads >= heads*1024 || heads > 16 {
			sectorsPerTrack = 31
			heads = 16
			cylinderTimesHeads = totalSectors / sectorsPerTrack
		}
		if cylinderTimesHeads >= heads*1024 {
			sectorsPerTrack = 63
			heads = 16
			cylinderTimesHeads = totalSectors / sectorsPerTrack
		}
	}
	cylinders := cylinderTimesHeads / heads

	return uint16(cylinders), uint8(heads), uint8(sectorsPerTrack)
}

// MarshalBinary serializes the footer, computing its checksum last: the one's
// complement of the byte-sum of the record with the checksum field zeroed. The
// checksum field of f is updated as a side effect.
func (f *Footer) MarshalBinary() ([]byte, error) {
	f.Checksum = 0

	buf := new(bytes.Buffer)
	err := binary.Write(buf, binary.BigEndian, f)
	if err != nil {
		return nil, err
	}

	b := buf.Bytes()
	var sum uint32
	for _, x := range b {
		sum += uint32(x)
	}
	f.Checksum = ^sum
	binary.BigEndian.PutUint32(b[checksumOffset:], f.Checksum)

	return b, nil
}

// DecodeFooter reads a footer from the first 512 bytes of b. It makes no
// judgement about validity; see Validate.
func DecodeFooter(b []byte) (*Footer, error) {
	if len(b) < FooterSize {
		return nil, fmt.Errorf("vhd footer requires %d bytes, got %d", FooterSize, len(b))
	}

	f := new(Footer)
	err := binary.Read(bytes.NewReader(b[:FooterSize]), binary.BigEndian, f)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Validation is the result of judging a decoded footer.
type Validation struct {
	CookieMatch        bool
	SupportedFixedDisk bool
	ChecksumOK         bool
	Stored             uint32
	Computed           uint32
}

// Validate checks the footer against the variant this package supports: a
// version 1.0 fixed hard disk. The checksum is recomputed with the field
// zeroed and compared against the stored value; a mismatch is reported, never
// judged fatal here.
func (f *Footer) Validate() Validation {
	v := Validation{
		CookieMatch: f.Cookie == cookie,
		Stored:      f.Checksum,
	}
	v.SupportedFixedDisk = v.CookieMatch &&
		f.FileFormatVersion == FileFormatV1 &&
		f.DiskType == TypeFixedHardDisk

	c := *f
	if _, err := c.MarshalBinary(); err == nil {
		v.Computed = c.Checksum
		v.ChecksumOK = v.Computed == v.Stored
	}

	return v
}

// AppendFooter appends a fixed-disk footer describing the file's current
// contents, turning a raw image into a fixed VHD in place.
func AppendFooter(path, creator string, log elog.View) error {
	if log == nil {
		log = elog.Discard
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("could not open image '%s': %w", path, err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("could not seek to end of image '%s': %w", path, err)
	}

	footer := NewFooter(size, creator)
	if footer.UniqueID == ([16]byte{}) {
		log.Warnf("could not set VHD UUID")
	}

	b, err := footer.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = f.Write(b)
	if err != nil {
		return fmt.Errorf("could not write VHD footer: %w", err)
	}

	log.Debugf("appended VHD footer to %s (%d payload bytes)", path, size)
	return nil
}
