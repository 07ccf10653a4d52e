package wim

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/huoxudong125/rufus/pkg/elog"
)

// probeNativeAPI reports whether the in-process WIM reader is usable. The
// reader is linked into the binary, so the facility is present as a unit.
func probeNativeAPI() bool {
	return true
}

type apiBackend struct {
	log elog.View
}

func (b *apiBackend) Name() string {
	return "native"
}

// Extract opens the container through the in-process reader, locates the
// member addressed by index and src, and materializes it at dst via a
// temporary file beside the destination. The reader is released on every exit
// path.
func (b *apiBackend) Extract(image string, index int, src, dst string) error {
	b.log.Printf("Opening: %s:[%d] (API)", image, index)

	r, err := sevenzip.OpenReader(image)
	if err != nil {
		return fmt.Errorf("could not access image: %w", err)
	}
	defer r.Close()

	want := memberName(index, src)
	b.log.Printf("Extracting: %s (From %s)", dst, src)

	for _, f := range r.File {
		if !strings.EqualFold(normalizeMember(f.Name), want) {
			continue
		}
		return b.copyMember(f, dst)
	}

	return fmt.Errorf("no member %s in %s", want, image)
}

func (b *apiBackend) copyMember(f *sevenzip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("could not open member: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".wim-extract-*")
	if err != nil {
		return err
	}

	_, err = io.Copy(tmp, rc)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not extract file: %w", err)
	}

	if err = os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// WIM members are addressed as index\path; archives may report either
// separator, so comparison is separator-normalized and, matching Windows
// filename semantics, case-insensitive.
func memberName(index int, src string) string {
	return normalizeMember(fmt.Sprintf("%d\\%s", index, src))
}

func normalizeMember(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
