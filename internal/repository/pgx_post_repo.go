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

type PostRepository interface {
	// ListByTags returns posts carrying any of tags, newest first.
	ListByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error)
	Upsert(ctx context.Context, post *model.BlogPost) error
}

type pgxPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPostRepository(pool *pgxpool.Pool) PostRepository {
	return &pgxPostRepository{pool: pool}
}

func (p *pgxPostRepository) ListByTags(ctx context.Context, tags []string) ([]*model.BlogPost, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	tagArgs := make([]any, 0, len(tags))
	for _, tag := range tags {
		tagArgs = append(tagArgs, tag)
	}

	q := psql.Select(
		sm.Distinct(),
		sm.Columns(
			"posts.slug", "posts.title", "posts.date", "posts.featured_image", "posts.authors", "posts.category",
			"ARRAY(SELECT t.tag FROM post_tags t WHERE t.post_slug = posts.slug ORDER BY t.tag) AS tags",
		),
		sm.From("posts"),
		sm.InnerJoin("post_tags").On(psql.Quote("post_tags", "post_slug").EQ(psql.Quote("posts", "slug"))),
		sm.Where(psql.Quote("post_tags", "tag").In(psql.Arg(tagArgs...))),
		sm.OrderBy("posts.date").Desc(),
		sm.OrderBy("posts.slug"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list posts by tags")
	}
	defer rows.Close()

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.BlogPost, error) {
		post := &model.BlogPost{}
		if err = row.Scan(
			&post.Slug,
			&post.Title,
			&post.Date,
			&post.FeaturedImage,
			&post.Authors,
			&post.Category,
			&post.Tags,
		); err != nil {
			return nil, err
		}
		return post, nil
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *pgxPostRepository) Upsert(ctx context.Context, post *model.BlogPost) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	authors := nonNil(post.Authors)

	q := psql.Insert(
		im.Into("posts", "slug", "title", "date", "featured_image", "authors", "category"),
		im.Values(
			psql.Arg(post.Slug), psql.Arg(post.Title), psql.Arg(post.Date),
			psql.Arg(post.FeaturedImage), psql.Arg(authors), psql.Arg(post.Category),
		),
		im.OnConflict(psql.Quote("slug")).DoUpdate(
			im.SetCol("title").ToArg(post.Title),
			im.SetCol("date").ToArg(post.Date),
			im.SetCol("featured_image").ToArg(post.FeaturedImage),
			im.SetCol("authors").ToArg(authors),
			im.SetCol("category").ToArg(post.Category),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "upsert post %s", post.Slug)
	}
	return nil
}
