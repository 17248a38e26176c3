package supercollider

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// jobSpec mirrors one `job "id" { depends_on = [...] }` block. Priority is
// an optional untyped attribute: it lets a graph description attach
// implementation-defined per-job metadata (here, a numeric priority hint
// handed to the JobFactory) without the loader's schema needing to know its concrete Go type up
// front.
type jobSpec struct {
	ID        string     `hcl:"id,label"`
	DependsOn []string   `hcl:"depends_on,optional"`
	Priority  *cty.Value `hcl:"priority,optional"`
}

// graphFile is the top-level structure of a graph description file.
type graphFile struct {
	Jobs []*jobSpec `hcl:"job,block"`
}

// priorityOf returns spec's declared priority, or 0 if it did not set one.
// It returns an error if a priority was set to a non-numeric value.
func (spec *jobSpec) priorityOf() (float64, error) {
	if spec.Priority == nil {
		return 0, nil
	}
	if spec.Priority.Type() != cty.Number {
		return 0, fmt.Errorf("job %q: priority must be a number, got %s", spec.ID, spec.Priority.Type().FriendlyName())
	}
	f, _ := spec.Priority.AsBigFloat().Float64()
	return f, nil
}

// JobFactory resolves a job's declared id and optional priority hint to a
// Job implementation. Callers supply one when loading a graph description;
// LoadGraphSpec calls it once per job block found in src. priority is 0
// when the block set none.
type JobFactory func(id string, priority float64) (Job, error)

// LoadGraphSpec parses an HCL graph description (job "id" { depends_on =
// [...] } blocks) from src, resolves each job's Job value via factory, and
// returns the resulting Graph. filename is used only for diagnostic
// messages.
//
// This is an alternative, declarative front end to GraphBuilder — the
// programmatic front end (AddJob/AddDependency/Build) remains available
// and is what LoadGraphSpec itself uses internally.
func LoadGraphSpec(filename string, src []byte, factory JobFactory) (*Graph, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &systemError{BuildGraph, fmt.Errorf("parsing %s: %w", filename, diags)}
	}

	var parsed graphFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, &systemError{BuildGraph, fmt.Errorf("decoding %s: %w", filename, diags)}
	}

	builder := NewGraphBuilder()
	for _, spec := range parsed.Jobs {
		priority, err := spec.priorityOf()
		if err != nil {
			return nil, &systemError{BuildGraph, err}
		}
		job, err := factory(spec.ID, priority)
		if err != nil {
			return nil, &systemError{BuildGraph, fmt.Errorf("resolving job %q: %w", spec.ID, err)}
		}
		if err := builder.AddJob(spec.ID, job); err != nil {
			return nil, err
		}
	}
	for _, spec := range parsed.Jobs {
		for _, dep := range spec.DependsOn {
			if err := builder.AddDependency(dep, spec.ID); err != nil {
				return nil, err
			}
		}
	}

	return builder.Build()
}
