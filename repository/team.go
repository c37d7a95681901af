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

package repository

import (
	"context"
	"fmt"

	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/entity"
	"github.com/uptrace/bun"
)

type teamRepository struct {
	Repository[entity.Team]
}

// NewTeamRepository returns a TeamRepository backed by db.
func NewTeamRepository(db *bun.DB) TeamRepository {
	return &teamRepository{Repository: NewRepository[entity.Team](db)}
}

func (r *teamRepository) Save(ctx context.Context, team *entity.Team) error {
	return r.SaveWithTx(ctx, r.DB(), team)
}

// SaveWithTx inserts team and copies its generated ID to members that were
// attached before the team was saved.
func (r *teamRepository) SaveWithTx(ctx context.Context, tx bun.IDB, team *entity.Team) error {
	if team == nil {
		return fmt.Errorf("team cannot be nil")
	}
	if err := r.CreateWithTx(ctx, tx, team); err != nil {
		return err
	}
	for _, m := range team.Members {
		m.SyncTeamID()
	}
	return nil
}

func (r *teamRepository) FindByID(ctx context.Context, id int64) (*entity.Team, error) {
	team, err := r.GetOne(ctx, id)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return team, err
}

func (r *teamRepository) FindByName(ctx context.Context, name string) (*entity.Team, error) {
	return r.FindByNameWithTx(ctx, r.DB(), name)
}

// FindByNameWithTx returns the oldest team called name, or nil.
func (r *teamRepository) FindByNameWithTx(ctx context.Context, tx bun.IDB, name string) (*entity.Team, error) {
	team := new(entity.Team)
	err := tx.NewSelect().
		Model(team).
		Where("t.name = ?", name).
		OrderExpr("t.team_id ASC").
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *teamRepository) FindAll(ctx context.Context) ([]*entity.Team, error) {
	return r.GetAll(ctx)
}

// LoadMembers replaces team.Members with the members stored under team's key
// and points each of them back at team.
func (r *teamRepository) LoadMembers(ctx context.Context, team *entity.Team) error {
	if team == nil {
		return fmt.Errorf("team cannot be nil")
	}
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Where("m.team_id = ?", team.ID).
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("load members of team %d: %w", team.ID, err)
	}
	team.Members = members
	for _, m := range members {
		m.Team = team
	}
	return nil
}

// FindWithMembers loads the team called name together with its members, or
// returns nil when no such team exists.
func (r *teamRepository) FindWithMembers(ctx context.Context, name string) (*entity.Team, error) {
	team := new(entity.Team)
	err := r.NewSelect().
		Model(team).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.member_id ASC")
		}).
		Where("t.name = ?", name).
		OrderExpr("t.team_id ASC").
		Limit(1).
		Scan(ctx)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for _, m := range team.Members {
		m.Team = team
	}
	return team, nil
}
