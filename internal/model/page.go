package model

// Page is a product page: frontmatter fields plus an MDX-like body that may
// reference slots by name.
type Page struct {
	Slug          string       `json:"slug" yaml:"-" validate:"required"`
	Title         string       `json:"title" yaml:"title" validate:"required"`
	Subtitle      string       `json:"subtitle,omitempty" yaml:"subtitle"`
	Description   string       `json:"description,omitempty" yaml:"description"`
	FeaturedImage string       `json:"featured_image,omitempty" yaml:"featuredImage"`
	Excerpt       string       `json:"excerpt,omitempty" yaml:"-"`
	Body          string       `json:"body" yaml:"-"`
	Features      []Feature    `json:"features,omitempty" yaml:"productFeatures"`
	Sections      []Section    `json:"sections,omitempty" yaml:"productSections"`
	Testimonial   *Testimonial `json:"testimonial,omitempty" yaml:"productTestimonial"`
	Team          string       `json:"team,omitempty" yaml:"productTeam"`
	CTA           *CTA         `json:"cta,omitempty" yaml:"productCTA"`
	BlogTags      []string     `json:"blog_tags,omitempty" yaml:"blogTags"`
}

type Feature struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

type Section struct {
	Title    string    `json:"title" yaml:"title"`
	Subtitle string    `json:"subtitle,omitempty" yaml:"subtitle"`
	Content  string    `json:"content" yaml:"content"`
	Features []Feature `json:"features,omitempty" yaml:"features"`
	Image    string    `json:"image,omitempty" yaml:"image"`
}

type Company struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

type Author struct {
	Name    string  `json:"name" yaml:"name"`
	Role    string  `json:"role" yaml:"role"`
	Image   string  `json:"image" yaml:"image"`
	Company Company `json:"company" yaml:"company"`
}

type Testimonial struct {
	Quote        string   `json:"quote" yaml:"quote"`
	Author       Author   `json:"author" yaml:"author"`
	Image        string   `json:"image,omitempty" yaml:"image"`
	FeaturesUsed []string `json:"features_used,omitempty" yaml:"featuresUsed"`
}

type CTA struct {
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Image    string `json:"image,omitempty" yaml:"image"`
}
