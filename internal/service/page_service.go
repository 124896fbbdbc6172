package service

import (
	"context"
	"html/template"

	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/cache"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/repository"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

type Composer interface {
	Compose(ctx context.Context, page *model.Page) (template.HTML, error)
	RenderPage(ctx context.Context, page *model.Page) ([]byte, error)
}

// ComposedPage is the page body without the site layout.
type ComposedPage struct {
	Slug  string        `json:"slug"`
	Title string        `json:"title"`
	HTML  template.HTML `json:"html"`
}

type PageService struct {
	source   repository.Source
	composer Composer

	pages  *cache.Cache[[]byte]
	bodies *cache.Cache[*ComposedPage]
}

func NewPageService(source repository.Source, composer Composer) *PageService {
	return &PageService{
		source:   source,
		composer: composer,
		pages:    cache.NewCache[[]byte](0),
		bodies:   cache.NewCache[*ComposedPage](0),
	}
}

// Render returns the full product page for slug.
func (s *PageService) Render(ctx context.Context, slug string) ([]byte, *Error) {
	l := logger.FromContext(ctx).With(zap.String("slug", slug))

	if out, ok := s.pages.Get(slug); ok {
		l.Debug("page cache hit")
		return out, nil
	}

	page, svcErr := s.page(ctx, slug)
	if svcErr != nil {
		return nil, svcErr
	}

	out, err := s.composer.RenderPage(ctx, page)
	if err != nil {
		l.Error("failed to render page", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to render page")
	}

	s.pages.Set(slug, out)
	l.Debug("page rendered", zap.Int("bytes", len(out)))
	return out, nil
}

// Compose returns only the composed body of slug.
func (s *PageService) Compose(ctx context.Context, slug string) (*ComposedPage, *Error) {
	l := logger.FromContext(ctx).With(zap.String("slug", slug))

	if out, ok := s.bodies.Get(slug); ok {
		return out, nil
	}

	page, svcErr := s.page(ctx, slug)
	if svcErr != nil {
		return nil, svcErr
	}

	html, err := s.composer.Compose(ctx, page)
	if err != nil {
		l.Error("failed to compose page", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to compose page")
	}

	out := &ComposedPage{Slug: page.Slug, Title: page.Title, HTML: html}
	s.bodies.Set(slug, out)
	return out, nil
}

// Purge empties the page caches and reports how many entries were dropped.
func (s *PageService) Purge(ctx context.Context) int {
	n := s.pages.Purge() + s.bodies.Purge()
	logger.FromContext(ctx).Info("page cache purged", zap.Int("entries", n))
	return n
}

func (s *PageService) page(ctx context.Context, slug string) (*model.Page, *Error) {
	l := logger.FromContext(ctx).With(zap.String("slug", slug))

	page, err := s.source.Page(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("page not found")
		return nil, NewError(ErrorCodeNotFound, "page not found")
	}
	if err != nil {
		l.Error("failed to get page", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get page")
	}
	return page, nil
}

func (s *PageService) WithCache(pages *cache.Cache[[]byte], bodies *cache.Cache[*ComposedPage]) *PageService {
	s.pages = pages
	s.bodies = bodies
	return s
}
