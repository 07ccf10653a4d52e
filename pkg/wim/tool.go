package wim

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/huoxudong125/rufus/pkg/elog"
)

const (
	configName = "rufus"

	// name of the file 7z is expected to have produced in its working
	// directory; its exit code is not a reliable success signal
	toolArtifact = "bootmgfw.efi"
)

// reads in the config file, carries on without one
func initConfig(log elog.View) {
	home, err := homedir.Dir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	} else {
		log.Debugf("%s", err.Error())
	}
}

// lookupToolPath locates the external 7z executable: an explicit path from
// the configuration wins, otherwise fall back to PATH. The result is only
// trusted if the executable actually exists on disk.
func lookupToolPath(log elog.View) (string, bool) {
	initConfig(log)

	path := viper.GetString("sevenzip.path")
	if path == "" {
		var err error
		path, err = exec.LookPath("7z")
		if err != nil {
			return "", false
		}
	}

	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

type toolBackend struct {
	path string
	log  elog.View
}

func (b *toolBackend) Name() string {
	return "7z"
}

// Extract shells out to 7z, which extracts into its working directory; that
// directory is the destination's parent, and the well-known artifact is then
// renamed onto dst. The child process is waited on unconditionally, with no
// timeout.
func (b *toolBackend) Extract(image string, index int, src, dst string) error {
	workDir := filepath.Dir(dst)

	b.log.Printf("Opening: %s:[%d] (7z)", image, index)
	b.log.Printf("Extracting: %s (From %s)", dst, src)

	// index\src is the 7z member syntax for WIM images
	cmd := exec.Command(b.path, "-y", "e", image, fmt.Sprintf("%d\\%s", index, src))
	cmd.Dir = workDir
	if err := cmd.Run(); err != nil {
		b.log.Debugf("7z: %v", err)
	}

	// only the artifact counts, whatever the exit code said
	artifact := filepath.Join(workDir, toolArtifact)
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("7z did not extract %s", artifact)
	}

	if err := os.Rename(artifact, dst); err != nil {
		return fmt.Errorf("could not rename %s to %s: %w", artifact, dst, err)
	}
	return nil
}
