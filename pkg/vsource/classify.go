package vsource

import (
	"io"
	"os"
	"strings"

	"github.com/huoxudong125/rufus/pkg/elog"
	"github.com/huoxudong125/rufus/pkg/vhd"
)

// MBRAnalyzer decides whether a raw image carries a bootable master boot
// record. The label is used for log attribution only.
type MBRAnalyzer func(r io.ReaderAt, size int64, label string) bool

// Classifier inspects candidate source images.
type Classifier struct {
	mbr MBRAnalyzer
	log elog.View
}

func NewClassifier(mbr MBRAnalyzer, log elog.View) *Classifier {
	if log == nil {
		log = &elog.CLI{}
	}
	return &Classifier{
		mbr: mbr,
		log: log,
	}
}

// ClassifyByExtension maps the substring following the final '.' of path onto
// a compression family. No dot, a leading dot only, or an unknown extension
// yields CompressionNone.
func ClassifyByExtension(path string) CompressionType {
	i := strings.LastIndex(path, ".")
	if i <= 0 {
		return CompressionNone
	}
	if c, ok := compressionExtensions[path[i:]]; ok {
		return c
	}
	return CompressionNone
}

// Classify inspects the image at path and produces a fresh report.
//
// A compressed image matching a known extension is assumed bootable without
// inspecting the payload; uncompressed images are judged by their boot record.
// An uncompressed image large enough to carry a VHD footer has its last sector
// decoded: when the cookie matches, the footer is excluded from the projected
// payload size, an unsupported disk variant disables bootability, and a bad
// checksum is logged but changes nothing. Source material with minor
// corruption is still usable, so classification must not bail out early on a
// checksum mismatch.
func (c *Classifier) Classify(path string) *Report {
	report := &Report{Compression: CompressionNone}

	f, err := os.Open(path)
	if err != nil {
		c.log.Errorf("could not open image '%s': %v", path, err)
		return report
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		c.log.Errorf("could not get image size: %v", err)
		return report
	}
	size := fi.Size()

	report.Compression = ClassifyByExtension(path)
	if report.Compression != CompressionNone {
		// TODO: uncompress the header and check for a bootable flag
		report.IsBootable = true
	} else if c.mbr != nil {
		report.IsBootable = c.mbr(f, size, "Image")
	}

	report.ProjectedSize = uint64(size)

	if report.Compression != CompressionNone || size < 512+vhd.FooterSize {
		return report
	}

	b := make([]byte, vhd.FooterSize)
	if _, err = f.ReadAt(b, size-vhd.FooterSize); err != nil {
		c.log.Errorf("could not read VHD footer: %v", err)
		return report
	}
	footer, err := vhd.DecodeFooter(b)
	if err != nil {
		c.log.Errorf("could not decode VHD footer: %v", err)
		return report
	}

	v := footer.Validate()
	if !v.CookieMatch {
		return report
	}

	// the footer is not part of the usable payload
	report.ProjectedSize -= vhd.FooterSize
	report.IsVHD = true

	if !v.SupportedFixedDisk {
		c.log.Errorf("unsupported type of VHD image")
		report.IsBootable = false
		return report
	}
	if !v.ChecksumOK {
		c.log.Warnf("VHD footer seems corrupted (checksum: %04X, expected: %04X)", v.Stored, v.Computed)
	}
	c.log.Printf("Image is a Fixed Hard Disk VHD file")

	return report
}
