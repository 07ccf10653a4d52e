package wim

import (
	"strings"

	"github.com/huoxudong125/rufus/pkg/elog"
)

// Backend is one mechanism capable of pulling a member file out of a WIM
// container.
type Backend interface {
	Name() string
	Extract(image string, index int, src, dst string) error
}

// Registry records which extraction backends are usable on this host. It is
// probed once and the result cached for the life of the process; construct
// one and share it rather than re-probing.
type Registry struct {
	log elog.View

	probed   bool
	hasAPI   bool
	hasTool  bool
	toolPath string
	chain    []Backend

	probeAPI  func() bool
	probeTool func(log elog.View) (string, bool)
}

func NewRegistry(log elog.View) *Registry {
	if log == nil {
		log = &elog.CLI{}
	}
	return &Registry{
		log:       log,
		probeAPI:  probeNativeAPI,
		probeTool: lookupToolPath,
	}
}

// Check finds out whether we have any way to extract WIM files on this host.
// The first call probes both backends and builds the fallback chain, 7z
// first; later calls are no-ops. Probing is idempotent, so benign re-entry is
// harmless.
func (r *Registry) Check() bool {
	if !r.probed {
		r.probed = true
		r.hasAPI = r.probeAPI()
		r.toolPath, r.hasTool = r.probeTool(r.log)

		r.chain = r.chain[:0]
		if r.hasTool {
			r.chain = append(r.chain, &toolBackend{path: r.toolPath, log: r.log})
		}
		if r.hasAPI {
			r.chain = append(r.chain, &apiBackend{log: r.log})
		}

		methods := make([]string, 0, 2)
		for _, b := range r.chain {
			methods = append(methods, b.Name())
		}
		if len(methods) == 0 {
			methods = append(methods, "NONE")
		}
		r.log.Printf("WIM extraction method(s) supported: %s", strings.Join(methods, ", "))
	}

	return r.hasAPI || r.hasTool
}

// Extract pulls the file at src inside image number index of the given WIM
// container and writes it to dst, trying each usable backend in order until
// one succeeds. 7z is preferred as, unsurprisingly, it is faster than the
// native reader. Returns false when every backend failed or none is usable.
func (r *Registry) Extract(image string, index int, src, dst string) bool {
	if image == "" || src == "" || dst == "" {
		return false
	}
	if !r.Check() {
		return false
	}

	for _, b := range r.chain {
		err := b.Extract(image, index, src, dst)
		if err == nil {
			p := r.log.NewProgress("Finalizing", "", 0)
			p.Finish(true)
			return true
		}
		r.log.Errorf("%s extraction failed: %v", b.Name(), err)
	}

	return false
}
