/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package querystudy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/dto"
	"github.com/tomoncle/querystudy/entity"
	"github.com/tomoncle/querystudy/repository"
	"github.com/tomoncle/querystudy/types"
	"github.com/uptrace/bun"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrInvalidAge     = errors.New("age must not be negative")
)

// Stats summarises member ages overall and per team.
type Stats struct {
	Ages  *dto.AgeStats     `json:"ages"`
	Teams []dto.TeamAgeStat `json:"teams"`
}

// MemberService is the application entry point for members and teams.
type MemberService interface {
	Service[entity.Member]

	// Register stores a new member, creating teamName first when no such
	// team exists. Both writes share one transaction. An empty teamName
	// registers a member without a team.
	Register(ctx context.Context, username string, age int, teamName string) (*entity.Member, error)

	// Transfer moves a member to teamName, or out of any team when teamName
	// is empty.
	Transfer(ctx context.Context, memberID int64, teamName string) (*entity.Member, error)

	Search(ctx context.Context, cond *dto.MemberSearchCondition) ([]dto.MemberTeamDto, error)
	SearchPage(ctx context.Context, cond *dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error)

	// Roster returns the team with its members loaded, or ErrTeamNotFound.
	Roster(ctx context.Context, teamName string) (*entity.Team, error)

	Stats(ctx context.Context) (*Stats, error)
}

type memberServiceImpl struct {
	*baseServiceImpl[entity.Member]
	opts    []repository.MemberOption
	members repository.MemberRepository
	teams   repository.TeamRepository
	once    sync.Once
	logger  database.Logger
}

// NewMemberService returns a MemberService backed by the global database
// connection, resolved on first use.
func NewMemberService(opts ...repository.MemberOption) MemberService {
	return NewMemberServiceWithDB(nil, opts...)
}

// NewMemberServiceWithDB returns a MemberService bound to db. A nil db means
// the global connection.
func NewMemberServiceWithDB(db *bun.DB, opts ...repository.MemberOption) MemberService {
	return &memberServiceImpl{
		baseServiceImpl: newBaseServiceImpl[entity.Member](db),
		opts:            opts,
		logger:          database.GetLogger(),
	}
}

func (s *memberServiceImpl) repos() (repository.MemberRepository, repository.TeamRepository) {
	s.once.Do(func() {
		db := s.baseRepo().DB()
		s.members = repository.NewMemberRepository(db, s.opts...)
		s.teams = repository.NewTeamRepository(db)
	})
	return s.members, s.teams
}

func (s *memberServiceImpl) Register(ctx context.Context, username string, age int, teamName string) (*entity.Member, error) {
	if age < 0 {
		return nil, fmt.Errorf("register member %s: %w", username, ErrInvalidAge)
	}
	members, teams := s.repos()
	teamName = strings.TrimSpace(teamName)

	var member *entity.Member
	err := members.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var team *entity.Team
		if teamName != "" {
			var err error
			team, err = teams.FindByNameWithTx(ctx, tx, teamName)
			if err != nil {
				return err
			}
			if team == nil {
				team = entity.NewTeam(teamName)
				if err := teams.SaveWithTx(ctx, tx, team); err != nil {
					return fmt.Errorf("create team %s: %w", teamName, err)
				}
				s.logger.Info("Team created", "team", teamName, "team_id", team.ID)
			}
		}
		member = entity.NewMemberInTeam(username, age, team)
		return members.SaveWithTx(ctx, tx, member)
	})
	if err != nil {
		return nil, fmt.Errorf("register member %s: %w", username, err)
	}
	s.logger.Info("Member registered", "member_id", member.ID, "username", username, "team", teamName)
	return member, nil
}

func (s *memberServiceImpl) Transfer(ctx context.Context, memberID int64, teamName string) (*entity.Member, error) {
	members, teams := s.repos()
	teamName = strings.TrimSpace(teamName)

	member := &entity.Member{ID: memberID}
	err := members.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(member).WherePK().Scan(ctx); err != nil {
			if database.IsNoRows(err) {
				return ErrMemberNotFound
			}
			return err
		}

		var team *entity.Team
		if teamName != "" {
			var err error
			if team, err = teams.FindByNameWithTx(ctx, tx, teamName); err != nil {
				return err
			}
			if team == nil {
				return ErrTeamNotFound
			}
		}
		member.ChangeTeam(team)
		return members.UpdateWithTx(ctx, tx, member)
	})
	if err != nil {
		return nil, fmt.Errorf("transfer member %d: %w", memberID, err)
	}
	s.logger.Info("Member transferred", "member_id", memberID, "team", teamName)
	return member, nil
}

func (s *memberServiceImpl) Search(ctx context.Context, cond *dto.MemberSearchCondition) ([]dto.MemberTeamDto, error) {
	members, _ := s.repos()
	s.logger.Debug("Searching members", "condition", cond.String())
	return members.SearchByBuilder(ctx, cond)
}

func (s *memberServiceImpl) SearchPage(ctx context.Context, cond *dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error) {
	members, _ := s.repos()
	return members.SearchPage(ctx, cond, page)
}

func (s *memberServiceImpl) Roster(ctx context.Context, teamName string) (*entity.Team, error) {
	_, teams := s.repos()
	team, err := teams.FindWithMembers(ctx, teamName)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
	}
	return team, nil
}

func (s *memberServiceImpl) Stats(ctx context.Context) (*Stats, error) {
	members, _ := s.repos()
	ages, err := members.AgeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("age stats: %w", err)
	}
	teams, err := members.AverageAgeByTeam(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("team stats: %w", err)
	}
	return &Stats{Ages: ages, Teams: teams}, nil
}
