package vhd

import (
	"errors"
	"io"
)

// FixedWriter wraps a WriteSeeker destined to hold length bytes of raw image
// data and appends the fixed-disk footer on Close.
type FixedWriter struct {
	w       io.WriteSeeker
	cursor  int64
	length  int64
	creator string
}

func NewFixedWriter(w io.WriteSeeker, length int64, creator string) *FixedWriter {
	return &FixedWriter{
		w:       w,
		length:  length,
		creator: creator,
	}
}

func (w *FixedWriter) Write(p []byte) (n int, err error) {
	n, err = w.w.Write(p)
	w.cursor += int64(n)
	return
}

func (w *FixedWriter) Seek(offset int64, whence int) (int64, error) {
	k, err := w.w.Seek(offset, whence)
	w.cursor = k
	return k, err
}

func (w *FixedWriter) writeFooter() error {
	_, err := w.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}

	if w.cursor < w.length {
		return errors.New("vhd fixed image writer expected more raw image data than was received")
	}

	b, err := NewFooter(w.length, w.creator).MarshalBinary()
	if err != nil {
		return err
	}

	_, err = w.w.Write(b)
	return err
}

func (w *FixedWriter) Close() error {
	return w.writeFooter()
}

// Wrap streams size bytes of raw image data from r into w and follows them
// with a fixed-disk footer.
func Wrap(w io.Writer, r io.Reader, size int64, creator string) error {
	k, err := io.Copy(w, r)
	if err != nil {
		return err
	}
	if k < size {
		return errors.New("vhd fixed image writer expected more raw image data than was received")
	}

	b, err := NewFooter(size, creator).MarshalBinary()
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}
