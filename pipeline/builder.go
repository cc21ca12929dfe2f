package pipeline

import (
	"context"

	"github.com/corestream/streamcore/common/errs"
)

// Factory constructs a pipe bound to the given downstream base.
type Factory func(base Pipe) (Pipe, error)

// Candidate is one entry in the preference-ordered chain table: an
// input kind, an ordered list of pipe factories (outermost first when
// read top to bottom, instantiated bottom-up), and the terminal
// renderer/output kind it produces.
type Candidate struct {
	Name     string
	Input    Kind
	Output   Kind
	Pipes    []NamedFactory
	Renderer NamedFactory
}

// NamedFactory pairs a factory with a static-info probe used before the
// factory is ever called, and the name used for forced-renderer pruning.
type NamedFactory struct {
	Name    string
	Info    func() Info
	Factory Factory
}

// Policy carries the spec-preserved policy knob from Open
// Question (ii): whether the H.264 high-8 4:4:4 variant is denied for a
// given backend identifier, despite a positive capability report.
type Policy struct {
	DenyHigh444For func(backend string) bool
}

func defaultPolicy() Policy {
	return Policy{DenyHigh444For: func(string) bool { return false }}
}

// Options configures a single Build call.
type Options struct {
	Output       Kind
	Codecs       []string
	ForceRenderer string
	Policy       Policy
	Backend      string
}

// Result is the outcome of a successful build: the outermost pipe of
// the instantiated chain (callers Submit into it; the renderer is the
// innermost base) and the codec set the chain actually covers.
type Result struct {
	Chain         Pipe
	ChainName     string
	EffectiveSet  map[string]bool
}

// Build iterates table in descending preference order and returns the
// first chain whose every link reports itself supported for at least
// one requested codec. Candidate order is the sole tie-breaker.
func Build(ctx context.Context, table []Candidate, opts Options) (*Result, error) {
	if opts.Policy.DenyHigh444For == nil {
		opts.Policy = defaultPolicy()
	}
	requested := make(map[string]bool, len(opts.Codecs))
	for _, c := range opts.Codecs {
		requested[c] = true
	}

	for _, cand := range table {
		if cand.Output != opts.Output {
			continue
		}
		if opts.ForceRenderer != "" && cand.Renderer.Name != opts.ForceRenderer {
			continue
		}

		effective := intersect(requested, cand.Renderer.Info())
		if len(effective) == 0 {
			continue
		}
		ok := true
		for _, p := range cand.Pipes {
			info := p.Info()
			if !info.EnvironmentSupported {
				ok = false
				break
			}
			effective = intersectMask(effective, info)
			if len(effective) == 0 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if opts.Policy.DenyHigh444For(opts.Backend) {
			delete(effective, "avc1.640032")
			delete(effective, "avc3.640032")
			if len(effective) == 0 {
				continue
			}
		}

		chain, err := instantiate(cand)
		if err != nil {
			continue
		}
		return &Result{Chain: chain, ChainName: cand.Name, EffectiveSet: effective}, nil
	}
	return nil, errs.New(errs.CodeUnsupportedCapability, "pipeline: no candidate chain supports the requested codecs in this environment")
}

func intersect(requested map[string]bool, info Info) map[string]bool {
	out := make(map[string]bool)
	if !info.EnvironmentSupported {
		return out
	}
	if info.SupportedVideoCodecs == nil {
		for c := range requested {
			out[c] = true
		}
		return out
	}
	for c := range requested {
		if s, ok := info.SupportedVideoCodecs[c]; ok && (s == SupportYes || s == SupportMaybe) {
			out[c] = true
		}
	}
	return out
}

func intersectMask(running map[string]bool, info Info) map[string]bool {
	if info.SupportedVideoCodecs == nil {
		return running
	}
	out := make(map[string]bool)
	for c := range running {
		if s, ok := info.SupportedVideoCodecs[c]; ok && (s == SupportYes || s == SupportMaybe) {
			out[c] = true
		}
	}
	return out
}

func instantiate(cand Candidate) (Pipe, error) {
	var base Pipe
	renderer, err := cand.Renderer.Factory(nil)
	if err != nil {
		return nil, err
	}
	base = renderer
	for i := len(cand.Pipes) - 1; i >= 0; i-- {
		p, err := cand.Pipes[i].Factory(base)
		if err != nil {
			return nil, err
		}
		base = p
	}
	return base, nil
}
