package service

import (
	"context"

	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/internal/roster"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

type MemberSource interface {
	TeamMembers(ctx context.Context) ([]*model.TeamMember, error)
}

type TeamService struct {
	members MemberSource
}

func NewTeamService(members MemberSource) *TeamService {
	return &TeamService{members: members}
}

func (t *TeamService) Roster(ctx context.Context, team string) (*roster.Roster, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting roster", zap.String("team_name", team))

	if team == "" {
		return nil, NewError(ErrorCodeInvalidBody, "team_name is required")
	}

	all, err := t.members.TeamMembers(ctx)
	if err != nil {
		l.Error("failed to get team members", zap.String("team_name", team), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get team members")
	}

	r, ok := roster.Aggregate(all, team)
	if !ok {
		l.Warn("team has no members", zap.String("team_name", team))
		return nil, NewError(ErrorCodeNotFound, "team has no members")
	}

	l.Debug("roster retrieved", zap.String("team_name", team), zap.Int("members", len(r.Members)))
	return r, nil
}
