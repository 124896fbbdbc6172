package slot

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/roster"
)

// Queries are the Content Source lookups renderers may issue on their own.
type Queries interface {
	PostsByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error)
	TeamMembers(ctx context.Context) ([]*model.TeamMember, error)
}

type NavItem struct {
	Label string `mapstructure:"label"`
	URL   string `mapstructure:"url"`
}

// Options carry site-wide settings the renderers and the layout need.
type Options struct {
	Brand         string
	SignupURL     string
	TeamURLPrefix string
	PathPrefix    string
	Nav           []NavItem
}

type renderers struct {
	q    Queries
	opts Options
	tpl  *template.Template
}

// Catalog returns a registry holding the standard slot set.
func Catalog(q Queries, opts Options) (*Registry, error) {
	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	r := &renderers{q: q, opts: opts, tpl: tpl}

	return NewRegistry().
		Register(Hero, r.hero).
		Register(FeatureGrid, r.featureGrid).
		Register(Sections, r.sections).
		Register(Testimonial, r.testimonial).
		Register(Comparison, r.comparison).
		Register(BlogPosts, r.blogPosts).
		Register(Roadmap, r.roadmap).
		Register(CTA, r.cta).
		Register(Check, r.icon("check")).
		Register(Close, r.icon("close")), nil
}

func (r *renderers) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "execute %s", name)
	}
	return template.HTML(buf.String()), nil
}

func (r *renderers) hero(_ context.Context, in Input) (template.HTML, error) {
	image := in.Page.FeaturedImage
	if image == "" {
		image = in.Props.String("image", "")
	}
	return r.execute("hero.html", map[string]any{
		"Title":     in.Page.Title,
		"Subtitle":  in.Page.Subtitle,
		"Image":     image,
		"ClassName": in.Props.String("className", ""),
	})
}

func (r *renderers) featureGrid(_ context.Context, in Input) (template.HTML, error) {
	if len(in.Page.Features) == 0 {
		return "", nil
	}
	return r.execute("feature_grid.html", map[string]any{
		"Features":  in.Page.Features,
		"Columns":   len(in.Page.Features),
		"ClassName": in.Props.String("className", ""),
	})
}

func (r *renderers) sections(_ context.Context, in Input) (template.HTML, error) {
	if len(in.Page.Sections) == 0 {
		return "", nil
	}
	return r.execute("sections.html", map[string]any{
		"Sections": in.Page.Sections,
	})
}

func (r *renderers) testimonial(_ context.Context, in Input) (template.HTML, error) {
	t := in.Page.Testimonial
	if t == nil || t.Quote == "" {
		return "", nil
	}
	return r.execute("testimonial.html", t)
}

func (r *renderers) comparison(_ context.Context, in Input) (template.HTML, error) {
	return r.execute("comparison.html", map[string]any{
		"Brand":       r.opts.Brand,
		"Description": fmt.Sprintf("How does %s %s compare?", r.opts.Brand, strings.ToLower(in.Page.Title)),
		"Children":    in.Children,
	})
}

func (r *renderers) blogPosts(ctx context.Context, in Input) (template.HTML, error) {
	if len(in.Page.BlogTags) == 0 {
		return "", nil
	}
	posts, err := r.q.PostsByTags(ctx, in.Page.BlogTags)
	if err != nil {
		return "", errors.Wrap(err, "query blog posts")
	}
	if len(posts) == 0 {
		return "", nil
	}
	return r.execute("blog_posts.html", map[string]any{
		"Title": fmt.Sprintf("Blog posts that mention %s", in.Page.Title),
		"Posts": posts,
	})
}

type rosterMember struct {
	*model.TeamMember
	Flag string
}

func (r *renderers) roadmap(ctx context.Context, in Input) (template.HTML, error) {
	if in.Page.Team == "" {
		return "", nil
	}
	all, err := r.q.TeamMembers(ctx)
	if err != nil {
		return "", errors.Wrap(err, "query team members")
	}
	team, ok := roster.Aggregate(all, in.Page.Team)
	if !ok {
		return "", nil
	}

	members := make([]rosterMember, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, rosterMember{TeamMember: m, Flag: roster.Flag(m.Country)})
	}

	return r.execute("roadmap.html", map[string]any{
		"Subtitle":   fmt.Sprintf("Here's what the %s Team is building next.", team.Team),
		"Brand":      r.opts.Brand,
		"Team":       strings.ToLower(team.Team),
		"TeamURL":    roster.TeamURL(r.opts.TeamURLPrefix, team.Team),
		"Members":    members,
		"Percentage": team.TraitPercentage,
	})
}

func (r *renderers) cta(_ context.Context, in Input) (template.HTML, error) {
	c := in.Page.CTA
	if c == nil || (c.Title == "" && c.Subtitle == "") {
		return "", nil
	}
	return r.execute("cta.html", map[string]any{
		"Title":     c.Title,
		"Subtitle":  c.Subtitle,
		"Image":     c.Image,
		"SignupURL": r.opts.SignupURL,
	})
}

func (r *renderers) icon(kind string) RenderFunc {
	return func(_ context.Context, in Input) (template.HTML, error) {
		return r.execute("icon.html", map[string]any{
			"Kind":      kind,
			"ClassName": in.Props.String("className", "w-5"),
		})
	}
}
