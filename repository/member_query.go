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

	"github.com/tomoncle/querystudy/dto"
	"github.com/tomoncle/querystudy/entity"
	"github.com/uptrace/bun"
)

// FindOne returns the member with the given username and age, nil when there
// is none, and an error when more than one row matches.
func (r *memberRepository) FindOne(ctx context.Context, username string, age int) (*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Where("m.username = ?", username).
		Where("m.age = ?", age).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	switch len(members) {
	case 0:
		return nil, nil
	case 1:
		return members[0], nil
	default:
		return nil, fmt.Errorf("non-unique result for username=%s age=%d", username, age)
	}
}

func (r *memberRepository) Count(ctx context.Context) (int, error) {
	return r.NewSelect().Model((*entity.Member)(nil)).Count(ctx)
}

// FindByAgeSorted orders by age descending, then username ascending with
// members lacking a username last.
func (r *memberRepository) FindByAgeSorted(ctx context.Context, age int) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Where("m.age = ?", age).
		OrderExpr("m.age DESC").
		OrderExpr("m.username IS NULL").
		OrderExpr("m.username ASC").
		Scan(ctx)
	return members, err
}

func (r *memberRepository) AgeStats(ctx context.Context) (*dto.AgeStats, error) {
	var stats dto.AgeStats
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("count(*) AS ?", bun.Ident("count")).
		ColumnExpr("coalesce(sum(m.age), 0) AS ?", bun.Ident("sum")).
		ColumnExpr("coalesce(avg(m.age), 0) AS ?", bun.Ident("avg")).
		ColumnExpr("coalesce(max(m.age), 0) AS ?", bun.Ident("max")).
		ColumnExpr("coalesce(min(m.age), 0) AS ?", bun.Ident("min")).
		Scan(ctx, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AverageAgeByTeam groups members by team name. A non-empty having keeps only
// that team's group.
func (r *memberRepository) AverageAgeByTeam(ctx context.Context, having string) ([]dto.TeamAgeStat, error) {
	stats := make([]dto.TeamAgeStat, 0)
	q := r.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("t.name AS team_name").
		ColumnExpr("avg(m.age) AS avg_age").
		Join("JOIN team AS t ON t.team_id = m.team_id").
		GroupExpr("t.name").
		OrderExpr("t.name ASC")
	if having != "" {
		q = q.Having("t.name = ?", having)
	}
	if err := q.Scan(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *memberRepository) FindByTeamName(ctx context.Context, teamName string) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Join("JOIN team AS t ON t.team_id = m.team_id").
		Where("t.name = ?", teamName).
		OrderExpr("m.username DESC").
		Scan(ctx)
	return members, err
}

// FindNamedAfterTeam is a theta join: members whose username equals the
// name of some team, with no relation between the rows.
func (r *memberRepository) FindNamedAfterTeam(ctx context.Context) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		TableExpr("team AS t").
		Where("m.username = t.name").
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	return members, err
}

// JoinOnTeamName keeps every member but joins only teams named teamName.
func (r *memberRepository) JoinOnTeamName(ctx context.Context, teamName string) ([]dto.MemberTeamDto, error) {
	rows := make([]dto.MemberTeamDto, 0)
	err := selectMemberTeam(r.NewSelect()).
		Join("LEFT JOIN team AS t ON t.team_id = m.team_id AND t.name = ?", teamName).
		OrderExpr("m.member_id ASC").
		Scan(ctx, &rows)
	return rows, err
}

// JoinOnUsername joins teams to members by name instead of by key.
func (r *memberRepository) JoinOnUsername(ctx context.Context) ([]dto.MemberTeamDto, error) {
	rows := make([]dto.MemberTeamDto, 0)
	err := selectMemberTeam(r.NewSelect()).
		Join("LEFT JOIN team AS t ON m.username = t.name").
		OrderExpr("m.member_id ASC").
		Scan(ctx, &rows)
	return rows, err
}

// FindByUsernameWithTeam loads the Team relation in the same query.
func (r *memberRepository) FindByUsernameWithTeam(ctx context.Context, username string) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Relation("Team").
		Where("m.username = ?", username).
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	return members, err
}

func (r *memberRepository) FindOldest(ctx context.Context) ([]*entity.Member, error) {
	sub := r.NewSelect().TableExpr("member AS ms").ColumnExpr("max(ms.age)")
	return r.findWhereSubquery(ctx, "m.age = (?)", sub)
}

func (r *memberRepository) FindAgeAtLeastAverage(ctx context.Context) ([]*entity.Member, error) {
	sub := r.NewSelect().TableExpr("member AS ms").ColumnExpr("avg(ms.age)")
	return r.findWhereSubquery(ctx, "m.age >= (?)", sub)
}

func (r *memberRepository) FindAgeInOlderThan(ctx context.Context, minAge int) ([]*entity.Member, error) {
	sub := r.NewSelect().
		TableExpr("member AS ms").
		ColumnExpr("ms.age").
		Where("ms.age > ?", minAge)
	return r.findWhereSubquery(ctx, "m.age IN (?)", sub)
}

func (r *memberRepository) findWhereSubquery(ctx context.Context, where string, sub *bun.SelectQuery) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Where(where, sub).
		OrderExpr("m.age ASC").
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	return members, err
}

func (r *memberRepository) Usernames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		Column("username").
		OrderExpr("m.member_id ASC").
		Scan(ctx, &names)
	return names, err
}

func (r *memberRepository) MemberDtos(ctx context.Context) ([]dto.MemberDto, error) {
	rows := make([]dto.MemberDto, 0)
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.username").
		ColumnExpr("m.age").
		OrderExpr("m.member_id ASC").
		Scan(ctx, &rows)
	return rows, err
}

func (r *memberRepository) UserDtos(ctx context.Context) ([]dto.UserDto, error) {
	rows := make([]dto.UserDto, 0)
	err := r.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.username AS name").
		ColumnExpr("m.age").
		OrderExpr("m.member_id ASC").
		Scan(ctx, &rows)
	return rows, err
}
