package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/huoxudong125/rufus/pkg/elog"
	"github.com/huoxudong125/rufus/pkg/vhd"
	"github.com/huoxudong125/rufus/pkg/vsource"
	"github.com/huoxudong125/rufus/pkg/wim"
)

const creatorTag = "rufu"

var logger elog.View

func init() {
	log := &elog.CLI{}
	logrus.SetFormatter(log)
	logrus.SetLevel(logrus.InfoLevel)
	logger = log
}

var debug bool

var rootCmd = &cobra.Command{
	Use:   "rufus",
	Short: "Prepare bootable source images for removable media",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logrus.SetLevel(logrus.TraceLevel)
		}
	},
}

var appendFooterCmd = &cobra.Command{
	Use:   "append-footer IMAGE",
	Short: "Append a fixed-disk VHD footer to a raw image in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return vhd.AppendFooter(args[0], creatorTag, logger)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect IMAGE",
	Short: "Classify a candidate source image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := vsource.NewClassifier(analyzeMBR, logger)
		report := c.Classify(args[0])
		logger.Printf("compression:    %s", report.Compression)
		logger.Printf("projected size: %d", report.ProjectedSize)
		logger.Printf("vhd container:  %v", report.IsVHD)
		logger.Printf("bootable:       %v", report.IsBootable)
	},
}

var extractCmd = &cobra.Command{
	Use:   "wim-extract IMAGE INDEX SRC DST",
	Short: "Extract one member file from a WIM image",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad image index '%s'", args[1])
		}
		r := wim.NewRegistry(logger)
		if !r.Extract(args[0], index, args[2], args[3]) {
			return errors.New("extraction failed")
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert RAW VHD",
	Short: "Copy a raw image into a new fixed VHD",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		fi, err := in.Stat()
		if err != nil {
			return err
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		p := logger.NewProgress("Writing image", "KiB", fi.Size())
		pr := p.ProxyReader(in)
		defer pr.Close()

		if err = vhd.Wrap(out, pr, fi.Size(), creatorTag); err != nil {
			p.Finish(false)
			return err
		}
		p.Finish(true)
		return nil
	},
}

// analyzeMBR is a minimal stand-in for full boot record analysis: a 55AA boot
// signature at the end of the first sector.
func analyzeMBR(r io.ReaderAt, size int64, label string) bool {
	if size < 512 {
		return false
	}
	var sector [512]byte
	if _, err := r.ReadAt(sector[:], 0); err != nil {
		return false
	}
	if sector[510] == 0x55 && sector[511] == 0xAA {
		logger.Printf("%s is bootable", label)
		return true
	}
	return false
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.AddCommand(appendFooterCmd, inspectCmd, extractCmd, convertCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
