package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/db"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/repository"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

// Bundle is a complete content snapshot to be written to the store.
type Bundle struct {
	Pages   []*model.Page
	Posts   []*model.BlogPost
	Members []*model.TeamMember
}

type ImportStats struct {
	Pages   int `json:"pages"`
	Posts   int `json:"posts"`
	Tags    int `json:"tags"`
	Members int `json:"members"`
}

type ImportService struct {
	tx db.Transactor

	pages   repository.PageRepository
	posts   repository.PostRepository
	tags    repository.TagRepository
	members repository.MemberRepository
}

func NewImportService(tx db.Transactor) *ImportService {
	return &ImportService{
		tx: tx,
	}
}

// Import writes the bundle in a single transaction; either everything
// lands or nothing does.
func (s *ImportService) Import(ctx context.Context, b *Bundle) (*ImportStats, *Error) {
	l := logger.FromContext(ctx)
	l.Info("importing content",
		zap.Int("pages", len(b.Pages)),
		zap.Int("posts", len(b.Posts)),
		zap.Int("members", len(b.Members)))

	stats := &ImportStats{}
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, page := range b.Pages {
			if err := s.pages.Upsert(txCtx, page); err != nil {
				l.Error("failed to upsert page", zap.String("slug", page.Slug), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to upsert page "+page.Slug)
			}
			stats.Pages++
		}

		for _, post := range b.Posts {
			if err := s.posts.Upsert(txCtx, post); err != nil {
				l.Error("failed to upsert post", zap.String("slug", post.Slug), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to upsert post "+post.Slug)
			}
			if err := s.tags.UnassignAll(txCtx, post.Slug); err != nil {
				l.Error("failed to clear post tags", zap.String("slug", post.Slug), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to clear post tags")
			}
			err := s.tags.Assign(txCtx, post.Slug, post.Tags)
			if errors.Is(err, repository.ErrNotFound) {
				l.Warn("post vanished while tagging", zap.String("slug", post.Slug))
				return NewError(ErrorCodeNotFound, "post "+post.Slug+" not found")
			}
			if err != nil {
				l.Error("failed to assign post tags", zap.String("slug", post.Slug), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to assign post tags")
			}
			stats.Posts++
			stats.Tags += len(post.Tags)
		}

		for _, member := range b.Members {
			if err := s.members.Upsert(txCtx, member); err != nil {
				l.Error("failed to upsert team member", zap.String("name", member.Name), zap.Error(err))
				return NewError(ErrorCodeUnspecified, "failed to upsert team member")
			}
			stats.Members++
		}

		return nil
	})

	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return nil, res
		}
		l.Error("import transaction failed", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "import failed")
	}

	l.Info("content imported", zap.Any("stats", stats))
	return stats, nil
}

func (s *ImportService) WithPageRepo(r repository.PageRepository) *ImportService {
	s.pages = r
	return s
}

func (s *ImportService) WithPostRepo(r repository.PostRepository) *ImportService {
	s.posts = r
	return s
}

func (s *ImportService) WithTagRepo(r repository.TagRepository) *ImportService {
	s.tags = r
	return s
}

func (s *ImportService) WithMemberRepo(r repository.MemberRepository) *ImportService {
	s.members = r
	return s
}
