package service

import (
	"context"
	"html/template"

	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/model"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Page(ctx context.Context, slug string) (*model.Page, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page), args.Error(1)
}

func (m *MockSource) PostsByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error) {
	args := m.Called(ctx, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BlogPost), args.Error(1)
}

func (m *MockSource) TeamMembers(ctx context.Context) ([]*model.TeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TeamMember), args.Error(1)
}

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(ctx context.Context, page *model.Page) (template.HTML, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(template.HTML), args.Error(1)
}

func (m *MockComposer) RenderPage(ctx context.Context, page *model.Page) ([]byte, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) Get(ctx context.Context, slug string) (*model.Page, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page), args.Error(1)
}

func (m *MockPageRepository) ListSlugs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPageRepository) Upsert(ctx context.Context, page *model.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) ListByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error) {
	args := m.Called(ctx, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.BlogPost), args.Error(1)
}

func (m *MockPostRepository) Upsert(ctx context.Context, post *model.BlogPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Assign(ctx context.Context, postSlug string, tags []string) error {
	args := m.Called(ctx, postSlug, tags)
	return args.Error(0)
}

func (m *MockTagRepository) UnassignAll(ctx context.Context, postSlug string) error {
	args := m.Called(ctx, postSlug)
	return args.Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*model.TeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TeamMember), args.Error(1)
}

func (m *MockMemberRepository) Upsert(ctx context.Context, member *model.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

type MockAuthBackend struct {
	mock.Mock
}

func (m *MockAuthBackend) Login(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthBackend) SignUp(ctx context.Context, form auth.SignUpForm) (*model.User, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthBackend) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthBackend) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}
