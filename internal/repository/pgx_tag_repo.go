package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/yakoovad/productsite/internal/db"
)

// TagRepository manages the post_tags link table.
type TagRepository interface {
	Assign(ctx context.Context, postSlug string, tags []string) error
	UnassignAll(ctx context.Context, postSlug string) error
}

type pgxTagRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTagRepository(pool *pgxpool.Pool) TagRepository {
	return &pgxTagRepository{pool: pool}
}

func (p *pgxTagRepository) Assign(ctx context.Context, postSlug string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("post_tags", "post_slug", "tag"),
		im.OnConflict().DoNothing(),
	)

	for _, tag := range tags {
		q.Apply(im.Values(psql.Arg(postSlug), psql.Arg(tag)))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrNotFound
	}

	return err
}

func (p *pgxTagRepository) UnassignAll(ctx context.Context, postSlug string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("post_tags"),
		dm.Where(psql.Quote("post_slug").EQ(psql.Arg(postSlug))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "unassign tags of %s", postSlug)
	}

	return nil
}
