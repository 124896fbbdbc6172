package slot

import (
	"context"
	"html/template"
	"sort"
)

// Names of the slots content authors may reference. Renaming one breaks any
// content still using the old name.
const (
	Hero        = "Hero"
	FeatureGrid = "FeatureGrid"
	Sections    = "Sections"
	Testimonial = "Testimonial"
	Comparison  = "Comparison"
	BlogPosts   = "BlogPosts"
	Roadmap     = "Roadmap"
	CTA         = "CTA"
	Check       = "Check"
	Close       = "Close"
)

// Input is everything a renderer gets for one marker.
type Input struct {
	Props    Props
	Children template.HTML
	Page     PageContext
}

// RenderFunc renders one slot. Returning an empty string renders nothing.
type RenderFunc func(ctx context.Context, in Input) (template.HTML, error)

type Registry struct {
	bindings map[string]RenderFunc
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]RenderFunc)}
}

// Register binds name to fn, replacing any previous binding.
func (r *Registry) Register(name string, fn RenderFunc) *Registry {
	r.bindings[name] = fn
	return r
}

func (r *Registry) Lookup(name string) (RenderFunc, bool) {
	fn, ok := r.bindings[name]
	return fn, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
