package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/productsite/internal/db"
	"github.com/yakoovad/productsite/internal/model"
)

type MemberRepository interface {
	// List returns every member ordered by start date.
	List(ctx context.Context) ([]*model.TeamMember, error)
	Upsert(ctx context.Context, member *model.TeamMember) error
}

type pgxMemberRepository struct {
	pool *pgxpool.Pool
}

func NewPgxMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgxMemberRepository{pool: pool}
}

func (p *pgxMemberRepository) List(ctx context.Context) ([]*model.TeamMember, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("name", "job_title", "country", "github", "teams", "team_lead", "pineapple_on_pizza", "headshot", "start_date"),
		sm.From("team_members"),
		sm.OrderBy("start_date"),
		sm.OrderBy("name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list team members")
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.TeamMember, error) {
		m := &model.TeamMember{}
		if err = row.Scan(
			&m.Name,
			&m.JobTitle,
			&m.Country,
			&m.GitHub,
			&m.Teams,
			&m.TeamLead,
			&m.PineappleOnPizza,
			&m.Headshot,
			&m.StartDate,
		); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (p *pgxMemberRepository) Upsert(ctx context.Context, member *model.TeamMember) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	teams := nonNil(member.Teams)

	q := psql.Insert(
		im.Into("team_members", "name", "job_title", "country", "github", "teams", "team_lead", "pineapple_on_pizza", "headshot", "start_date"),
		im.Values(memberValues(member)...),
		im.OnConflict(psql.Quote("name")).DoUpdate(
			im.SetCol("job_title").ToArg(member.JobTitle),
			im.SetCol("country").ToArg(member.Country),
			im.SetCol("github").ToArg(member.GitHub),
			im.SetCol("teams").ToArg(teams),
			im.SetCol("team_lead").ToArg(member.TeamLead),
			im.SetCol("pineapple_on_pizza").ToArg(member.PineappleOnPizza),
			im.SetCol("headshot").ToArg(member.Headshot),
			im.SetCol("start_date").ToArg(member.StartDate),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "upsert team member %s", member.Name)
	}
	return nil
}

func memberValues(m *model.TeamMember) []bob.Expression {
	return []bob.Expression{
		psql.Arg(m.Name), psql.Arg(m.JobTitle), psql.Arg(m.Country), psql.Arg(m.GitHub), psql.Arg(nonNil(m.Teams)),
		psql.Arg(m.TeamLead), psql.Arg(m.PineappleOnPizza), psql.Arg(m.Headshot), psql.Arg(m.StartDate),
	}
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
