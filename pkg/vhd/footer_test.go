package vhd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huoxudong125/rufus/pkg/elog"
)

func TestFooterRoundTrip(t *testing.T) {

	sizes := []int64{512, 1024, 1 << 20, 3 << 30}

	for _, size := range sizes {
		f := NewFooter(size, "rufu")
		b, err := f.MarshalBinary()
		assert.NoError(t, err)
		assert.Len(t, b, FooterSize)

		g, err := DecodeFooter(b)
		assert.NoError(t, err)
		assert.Equal(t, uint64(size), g.OriginalSize)
		assert.Equal(t, uint64(size), g.CurrentSize)
		assert.Equal(t, [4]byte{'r', 'u', 'f', 'u'}, g.CreatorApplication)

		v := g.Validate()
		assert.True(t, v.CookieMatch)
		assert.True(t, v.SupportedFixedDisk)
		assert.True(t, v.ChecksumOK)
	}
}

func TestDecodeFooterShortInput(t *testing.T) {

	_, err := DecodeFooter(make([]byte, 100))
	assert.Error(t, err)
}

func TestCHSGeometry(t *testing.T) {

	// one sector below the large-disk threshold the retry chain lands on
	// 63 sectors per track
	cyl, heads, spt := chsGeometry((65535*16*63 - 1) * 512)
	assert.Equal(t, uint8(63), spt)
	assert.Equal(t, uint8(16), heads)
	assert.Equal(t, uint16(65535), cyl)

	// at the threshold the large-disk branch takes over
	_, heads, spt = chsGeometry(65535 * 16 * 63 * 512)
	assert.Equal(t, uint8(255), spt)
	assert.Equal(t, uint8(16), heads)

	// oversized disks clamp to the CHS maximum
	cyl, heads, spt = chsGeometry(65535 * 16 * 255 * 512 * 2)
	assert.Equal(t, uint8(255), spt)
	assert.Equal(t, uint8(16), heads)
	assert.Equal(t, uint16(65535), cyl)

	// small disks clamp heads up to 4
	cyl, heads, spt = chsGeometry(1024 * 512)
	assert.Equal(t, uint8(17), spt)
	assert.Equal(t, uint8(4), heads)
	assert.Equal(t, uint16(15), cyl)
}

func TestChecksumCorruption(t *testing.T) {

	f := NewFooter(1<<20, "rufu")
	b, err := f.MarshalBinary()
	assert.NoError(t, err)

	// flip a byte inside the reserved padding
	b[200] ^= 0xFF

	g, err := DecodeFooter(b)
	assert.NoError(t, err)

	v := g.Validate()
	assert.True(t, v.CookieMatch)
	assert.True(t, v.SupportedFixedDisk)
	assert.False(t, v.ChecksumOK)
	assert.NotEqual(t, v.Stored, v.Computed)
}

func TestValidateRejectsOtherVariants(t *testing.T) {

	f := NewFooter(1<<20, "rufu")
	f.DiskType = TypeDynamicHardDisk
	b, err := f.MarshalBinary()
	assert.NoError(t, err)

	g, err := DecodeFooter(b)
	assert.NoError(t, err)

	v := g.Validate()
	assert.True(t, v.CookieMatch)
	assert.False(t, v.SupportedFixedDisk)
	assert.True(t, v.ChecksumOK)
}

func TestAppendFooter(t *testing.T) {

	path := filepath.Join(t.TempDir(), "disk.img")
	payload := make([]byte, 4096)
	err := os.WriteFile(path, payload, 0644)
	assert.NoError(t, err)

	err = AppendFooter(path, "rufu", elog.Discard)
	assert.NoError(t, err)

	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Len(t, b, 4096+FooterSize)

	f, err := DecodeFooter(b[4096:])
	assert.NoError(t, err)
	assert.Equal(t, uint64(4096), f.OriginalSize)

	v := f.Validate()
	assert.True(t, v.SupportedFixedDisk)
	assert.True(t, v.ChecksumOK)
}

func TestAppendFooterMissingFile(t *testing.T) {

	err := AppendFooter(filepath.Join(t.TempDir(), "nope.img"), "rufu", elog.Discard)
	assert.Error(t, err)
}

func TestFixedWriter(t *testing.T) {

	path := filepath.Join(t.TempDir(), "disk.vhd")
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	payload := make([]byte, 2048)
	w := NewFixedWriter(f, int64(len(payload)), "rufu")

	_, err = w.Write(payload)
	assert.NoError(t, err)
	err = w.Close()
	assert.NoError(t, err)

	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Len(t, b, 2048+FooterSize)

	footer, err := DecodeFooter(b[2048:])
	assert.NoError(t, err)
	assert.True(t, footer.Validate().ChecksumOK)
}

func TestFixedWriterShortPayload(t *testing.T) {

	path := filepath.Join(t.TempDir(), "disk.vhd")
	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	w := NewFixedWriter(f, 4096, "rufu")
	_, err = w.Write(make([]byte, 512))
	assert.NoError(t, err)
	assert.Error(t, w.Close())
}
