package elog

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestCLIFormat(t *testing.T) {

	cli := &CLI{}
	b, err := cli.Format(&logrus.Entry{Message: "hello"})
	assert.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
}

func TestDiscardProgress(t *testing.T) {

	p := Discard.NewProgress("label", "KiB", 100)
	r := p.ProxyReader(strings.NewReader("payload"))
	defer r.Close()

	b, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	p.Increment(7)
	p.Finish(true)
	p.Finish(false) // idempotent
}

func TestCLIDisabledTTYProgress(t *testing.T) {

	cli := &CLI{DisableTTY: true}
	p := cli.NewProgress("label", "", 0)
	p.Finish(true)
}
