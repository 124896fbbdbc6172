package repository

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/slot"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	productDir = "product"
	blogDir    = "blog"
	teamDir    = "team"

	excerptLength = 150
)

// FileSource serves content from a directory tree of markdown files with
// frontmatter: product/ for pages, blog/ for posts and team/ for members.
type FileSource struct {
	dir string

	mu      sync.RWMutex
	pages   map[string]*model.Page
	posts   []*model.BlogPost
	members []*model.TeamMember
}

func NewFileSource(dir string) (*FileSource, error) {
	s := &FileSource{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileSource) Dir() string {
	return s.dir
}

// Reload re-reads the whole tree. On error the previous content is kept.
func (s *FileSource) Reload() error {
	pages := make(map[string]*model.Page)
	err := walkMarkdown(filepath.Join(s.dir, productDir), func(rel string, raw []byte) error {
		page := &model.Page{}
		body, err := frontmatter.Parse(bytes.NewReader(raw), page)
		if err != nil {
			return errors.Wrapf(err, "parse page %s", rel)
		}
		page.Slug = slugOf(rel)
		page.Body = string(body)
		if page.Title == "" {
			page.Title = titleFromName(rel)
		}
		page.Excerpt = slot.Excerpt(page.Body, excerptLength)
		pages[page.Slug] = page
		return nil
	})
	if err != nil {
		return err
	}

	var posts []*model.BlogPost
	err = walkMarkdown(filepath.Join(s.dir, blogDir), func(rel string, raw []byte) error {
		post := &model.BlogPost{}
		if _, err := frontmatter.Parse(bytes.NewReader(raw), post); err != nil {
			return errors.Wrapf(err, "parse post %s", rel)
		}
		post.Slug = slugOf(rel)
		if post.Title == "" {
			post.Title = titleFromName(rel)
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortStableFunc(posts, func(a, b *model.BlogPost) int {
		return b.Date.Compare(a.Date)
	})

	var members []*model.TeamMember
	err = walkMarkdown(filepath.Join(s.dir, teamDir), func(rel string, raw []byte) error {
		member := &model.TeamMember{}
		if _, err := frontmatter.Parse(bytes.NewReader(raw), member); err != nil {
			return errors.Wrapf(err, "parse team member %s", rel)
		}
		if member.Name == "" {
			member.Name = titleFromName(rel)
		}
		members = append(members, member)
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortStableFunc(members, func(a, b *model.TeamMember) int {
		return a.StartDate.Compare(b.StartDate)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
	s.posts = posts
	s.members = members
	return nil
}

func (s *FileSource) Page(_ context.Context, slug string) (*model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return page, nil
}

func (s *FileSource) PostsByTags(_ context.Context, tags []string) ([]*model.BlogPost, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.BlogPost
	for _, post := range s.posts {
		if post.HasAnyTag(tags) {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *FileSource) TeamMembers(_ context.Context) ([]*model.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members), nil
}

// Pages returns every page sorted by slug.
func (s *FileSource) Pages() []*model.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Page, 0, len(s.pages))
	for _, page := range s.pages {
		out = append(out, page)
	}
	slices.SortFunc(out, func(a, b *model.Page) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return out
}

func (s *FileSource) Posts() []*model.BlogPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts)
}

func walkMarkdown(root string, fn func(rel string, raw []byte) error) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), raw)
	})
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

func slugOf(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func titleFromName(rel string) string {
	base := slugOf(filepath.Base(rel))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(base)
}
