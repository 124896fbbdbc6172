package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/productsite/internal/db"
	"github.com/yakoovad/productsite/internal/model"
)

var pageColumns = []any{
	"slug", "title", "subtitle", "description", "featured_image", "excerpt", "body",
	"features", "sections", "testimonial", "team", "cta", "blog_tags",
}

type PageRepository interface {
	Get(ctx context.Context, slug string) (*model.Page, error)
	ListSlugs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, page *model.Page) error
}

type pgxPageRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPageRepository(pool *pgxpool.Pool) PageRepository {
	return &pgxPageRepository{pool: pool}
}

func (p *pgxPageRepository) Get(ctx context.Context, slug string) (*model.Page, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(pageColumns...),
		sm.From("pages"),
		sm.Where(psql.Quote("slug").EQ(psql.Arg(slug))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	page := &model.Page{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&page.Slug,
		&page.Title,
		&page.Subtitle,
		&page.Description,
		&page.FeaturedImage,
		&page.Excerpt,
		&page.Body,
		&page.Features,
		&page.Sections,
		&page.Testimonial,
		&page.Team,
		&page.CTA,
		&page.BlogTags,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get page %s", slug)
	}
	return page, nil
}

func (p *pgxPageRepository) ListSlugs(ctx context.Context) ([]string, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("slug"),
		sm.From("pages"),
		sm.OrderBy("slug"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *pgxPageRepository) Upsert(ctx context.Context, page *model.Page) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	features := nonNil(page.Features)
	sections := nonNil(page.Sections)
	tags := nonNil(page.BlogTags)

	q := psql.Insert(
		im.Into("pages", "slug", "title", "subtitle", "description", "featured_image", "excerpt", "body",
			"features", "sections", "testimonial", "team", "cta", "blog_tags"),
		im.Values(
			psql.Arg(page.Slug), psql.Arg(page.Title), psql.Arg(page.Subtitle), psql.Arg(page.Description),
			psql.Arg(page.FeaturedImage), psql.Arg(page.Excerpt), psql.Arg(page.Body),
			psql.Arg(features), psql.Arg(sections), psql.Arg(page.Testimonial),
			psql.Arg(page.Team), psql.Arg(page.CTA), psql.Arg(tags),
		),
		im.OnConflict(psql.Quote("slug")).DoUpdate(
			im.SetCol("title").ToArg(page.Title),
			im.SetCol("subtitle").ToArg(page.Subtitle),
			im.SetCol("description").ToArg(page.Description),
			im.SetCol("featured_image").ToArg(page.FeaturedImage),
			im.SetCol("excerpt").ToArg(page.Excerpt),
			im.SetCol("body").ToArg(page.Body),
			im.SetCol("features").ToArg(features),
			im.SetCol("sections").ToArg(sections),
			im.SetCol("testimonial").ToArg(page.Testimonial),
			im.SetCol("team").ToArg(page.Team),
			im.SetCol("cta").ToArg(page.CTA),
			im.SetCol("blog_tags").ToArg(tags),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "upsert page %s", page.Slug)
	}
	return nil
}
