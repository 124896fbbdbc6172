package repository

import (
	"context"

	"github.com/yakoovad/productsite/internal/model"
)

// Source is the read side the page composer works against.
type Source interface {
	Page(ctx context.Context, slug string) (*model.Page, error)
	PostsByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error)
	TeamMembers(ctx context.Context) ([]*model.TeamMember, error)
}

type pgxSource struct {
	pages   PageRepository
	posts   PostRepository
	members MemberRepository
}

func NewPgxSource(pages PageRepository, posts PostRepository, members MemberRepository) Source {
	return &pgxSource{pages: pages, posts: posts, members: members}
}

func (s *pgxSource) Page(ctx context.Context, slug string) (*model.Page, error) {
	return s.pages.Get(ctx, slug)
}

func (s *pgxSource) PostsByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error) {
	return s.posts.ListByTags(ctx, tags)
}

func (s *pgxSource) TeamMembers(ctx context.Context) ([]*model.TeamMember, error) {
	return s.members.List(ctx)
}
