package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/productsite/internal/model"
)

func TestTeamService_Roster(t *testing.T) {
	members := []*model.TeamMember{
		{Name: "ann", Teams: []string{"Replay"}, PineappleOnPizza: true},
		{Name: "bob", Teams: []string{"Replay"}, TeamLead: true},
		{Name: "cat", Teams: []string{"Growth"}},
		{Name: "dan", Teams: []string{"Replay"}},
	}

	tests := []struct {
		name          string
		teamName      string
		setupMocks    func(*MockSource)
		expectedError bool
		errorCode     ErrorCode
		expectedNames []string
		expectedPct   int
	}{
		{
			name:     "success",
			teamName: "Replay",
			setupMocks: func(s *MockSource) {
				s.On("TeamMembers", mock.Anything).Return(members, nil)
			},
			expectedNames: []string{"bob", "ann", "dan"},
			expectedPct:   33,
		},
		{
			name:          "missing team name",
			teamName:      "",
			setupMocks:    func(s *MockSource) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidBody,
		},
		{
			name:     "team without members",
			teamName: "Nobody",
			setupMocks: func(s *MockSource) {
				s.On("TeamMembers", mock.Anything).Return(members, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:     "source failure",
			teamName: "Replay",
			setupMocks: func(s *MockSource) {
				s.On("TeamMembers", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSource := new(MockSource)
			tt.setupMocks(mockSource)

			service := NewTeamService(mockSource)

			got, err := service.Roster(context.Background(), tt.teamName)

			if tt.expectedError {
				if assert.NotNil(t, err) {
					assert.Equal(t, tt.errorCode, err.Code)
				}
				assert.Nil(t, got)
				return
			}

			assert.Nil(t, err)
			names := make([]string, 0, len(got.Members))
			for _, m := range got.Members {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Equal(t, tt.expectedPct, got.TraitPercentage)
			assert.Equal(t, 1, got.LeadCount)

			mockSource.AssertExpectations(t)
		})
	}
}
