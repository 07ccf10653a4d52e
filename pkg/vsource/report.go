package vsource

// CompressionType identifies the compression family of a source image, judged
// by filename alone. Decompression is delegated elsewhere.
type CompressionType string

const (
	CompressionNone  CompressionType = "none"
	CompressionXZ    CompressionType = "xz"
	CompressionGZip  CompressionType = "gzip"
	CompressionLZMA  CompressionType = "lzma"
	CompressionBZip2 CompressionType = "bzip2"
	CompressionLZW   CompressionType = "lzw"
)

func (x CompressionType) String() string {
	return string(x)
}

// Matching is exact and case-sensitive: ".Z" is compress(1) LZW while ".z"
// matches nothing.
var compressionExtensions = map[string]CompressionType{
	".xz":   CompressionXZ,
	".gz":   CompressionGZip,
	".lzma": CompressionLZMA,
	".bz2":  CompressionBZip2,
	".Z":    CompressionLZW,
}

// Report describes one candidate source image. A fresh Report is produced per
// classification; the caller owns it.
type Report struct {
	Compression   CompressionType
	ProjectedSize uint64 // payload bytes, excluding any trailing VHD footer
	IsVHD         bool
	IsBootable    bool
}
