package elog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// Progress is a long-running operation reported to the user. Finish is safe to
// call more than once; only the first call takes effect.
type Progress interface {
	Increment(n int64)
	ProxyReader(r io.Reader) io.ReadCloser
	Finish(success bool)
}

// View is the logging surface handed around the toolchain.
type View interface {
	Debugf(format string, x ...interface{})
	Infof(format string, x ...interface{})
	Printf(format string, x ...interface{})
	Warnf(format string, x ...interface{})
	Errorf(format string, x ...interface{})
	NewProgress(label string, units string, total int64) Progress
}

// CLI is a View for terminal use. Its zero value is ready to use, and it
// doubles as a logrus.Formatter so that package-level logrus output matches
// its style (see cmd wiring).
type CLI struct {
	DisableTTY bool
}

// Format implements logrus.Formatter.
func (cli *CLI) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(entry.Message + "\n"), nil
}

func (cli *CLI) Debugf(format string, x ...interface{}) {
	logrus.Debugf(format, x...)
}

func (cli *CLI) Infof(format string, x ...interface{}) {
	logrus.Infof(format, x...)
}

func (cli *CLI) Printf(format string, x ...interface{}) {
	logrus.Infof(format, x...)
}

func (cli *CLI) Warnf(format string, x ...interface{}) {
	logrus.Warnf(format, x...)
}

func (cli *CLI) Errorf(format string, x ...interface{}) {
	logrus.Errorf(format, x...)
}

func (cli *CLI) NewProgress(label string, units string, total int64) Progress {
	if cli.DisableTTY {
		return &discardProgress{}
	}

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
	var bar *mpb.Bar

	switch {
	case total <= 0:
		bar = p.AddSpinner(total, mpb.SpinnerOnLeft,
			mpb.AppendDecorators(decor.Name(label)))
	case units == "KiB":
		bar = p.AddBar(total,
			mpb.PrependDecorators(decor.Name(label)),
			mpb.AppendDecorators(decor.CountersKibiByte("% .2f / % .2f")))
	default:
		bar = p.AddBar(total,
			mpb.PrependDecorators(decor.Name(label)),
			mpb.AppendDecorators(decor.Percentage()))
	}

	return &progressBar{p: p, bar: bar, total: total}
}

type progressBar struct {
	p     *mpb.Progress
	bar   *mpb.Bar
	total int64
	done  bool
}

func (pb *progressBar) Increment(n int64) {
	pb.bar.IncrInt64(n)
}

func (pb *progressBar) ProxyReader(r io.Reader) io.ReadCloser {
	return pb.bar.ProxyReader(r)
}

func (pb *progressBar) Finish(success bool) {
	if pb.done {
		return
	}
	pb.done = true
	if success {
		if pb.total <= 0 {
			pb.bar.SetTotal(-1, true)
		} else {
			pb.bar.SetTotal(pb.total, true)
		}
	} else {
		pb.bar.Abort(false)
	}
	pb.p.Wait()
}

// Discard suppresses all output. Useful as a library default and in tests.
var Discard View = &discardView{}

type discardView struct{}

func (v *discardView) Debugf(format string, x ...interface{}) {}
func (v *discardView) Infof(format string, x ...interface{})  {}
func (v *discardView) Printf(format string, x ...interface{}) {}
func (v *discardView) Warnf(format string, x ...interface{})  {}
func (v *discardView) Errorf(format string, x ...interface{}) {}

func (v *discardView) NewProgress(label string, units string, total int64) Progress {
	return &discardProgress{}
}

type discardProgress struct{}

func (p *discardProgress) Increment(n int64) {}

func (p *discardProgress) ProxyReader(r io.Reader) io.ReadCloser {
	return io.NopCloser(r)
}

func (p *discardProgress) Finish(success bool) {}
