package slot

import (
	"slices"

	"github.com/yakoovad/productsite/internal/model"
)

// PageContext is the page-level data handed to every renderer. It is built
// once per composition and copied by value; slices are cloned so renderers
// cannot reach back into the source record.
type PageContext struct {
	Slug          string
	Title         string
	Subtitle      string
	Description   string
	FeaturedImage string
	Features      []model.Feature
	Sections      []model.Section
	Testimonial   *model.Testimonial
	Team          string
	CTA           *model.CTA
	BlogTags      []string
}

func NewPageContext(p *model.Page) PageContext {
	pc := PageContext{
		Slug:          p.Slug,
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Description:   p.Description,
		FeaturedImage: p.FeaturedImage,
		Features:      slices.Clone(p.Features),
		Sections:      make([]model.Section, 0, len(p.Sections)),
		Team:          p.Team,
		BlogTags:      slices.Clone(p.BlogTags),
	}
	for _, s := range p.Sections {
		s.Features = slices.Clone(s.Features)
		pc.Sections = append(pc.Sections, s)
	}
	if p.Testimonial != nil {
		t := *p.Testimonial
		t.FeaturesUsed = slices.Clone(t.FeaturesUsed)
		pc.Testimonial = &t
	}
	if p.CTA != nil {
		c := *p.CTA
		pc.CTA = &c
	}
	return pc
}
