package model

import "time"

type BlogPost struct {
	Slug          string    `json:"slug" yaml:"-"`
	Title         string    `json:"title" yaml:"title" validate:"required"`
	Date          time.Time `json:"date" yaml:"date"`
	FeaturedImage string    `json:"featured_image,omitempty" yaml:"featuredImage"`
	Authors       []string  `json:"authors,omitempty" yaml:"authors"`
	Category      string    `json:"category,omitempty" yaml:"category"`
	Tags          []string  `json:"tags,omitempty" yaml:"tags"`
}

// HasAnyTag reports whether the post carries at least one of tags.
func (p *BlogPost) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range p.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
