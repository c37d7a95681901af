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
	"github.com/tomoncle/querystudy/dto"
	"github.com/tomoncle/querystudy/entity"
	"github.com/tomoncle/querystudy/types"
	"github.com/uptrace/bun"
)

// MemberOption customises a member repository.
type MemberOption func(*memberRepository)

// WithLegacyAgeLoe makes the AgeLoe bound of a search condition behave like a
// second lower bound (age >= AgeLoe), as older releases did.
func WithLegacyAgeLoe(enabled bool) MemberOption {
	return func(r *memberRepository) {
		r.legacyAgeLoe = enabled
	}
}

type memberRepository struct {
	Repository[entity.Member]
	legacyAgeLoe bool
}

// NewMemberRepository returns a MemberRepository backed by db.
func NewMemberRepository(db *bun.DB, opts ...MemberOption) MemberRepository {
	r := &memberRepository{Repository: NewRepository[entity.Member](db)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *memberRepository) Save(ctx context.Context, member *entity.Member) error {
	return r.SaveWithTx(ctx, r.DB(), member)
}

// SaveWithTx inserts member and sets its generated ID. A team attached with
// ChangeTeam must already be saved.
func (r *memberRepository) SaveWithTx(ctx context.Context, tx bun.IDB, member *entity.Member) error {
	if member == nil {
		return fmt.Errorf("member cannot be nil")
	}
	member.SyncTeamID()
	return r.CreateWithTx(ctx, tx, member)
}

func (r *memberRepository) FindByID(ctx context.Context, id int64) (*entity.Member, error) {
	member, err := r.GetOne(ctx, id)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return member, err
}

func (r *memberRepository) FindAll(ctx context.Context) ([]*entity.Member, error) {
	return r.GetAll(ctx)
}

func (r *memberRepository) FindAllRaw(ctx context.Context) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewRaw("SELECT * FROM ? ORDER BY ? ASC", bun.Ident("member"), bun.Ident(r.PrimaryKey())).
		Scan(ctx, &members)
	return members, err
}

func (r *memberRepository) FindByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewSelect().
		Model(&members).
		Where("m.username = ?", username).
		OrderExpr("m.member_id ASC").
		Scan(ctx)
	return members, err
}

func (r *memberRepository) FindByUsernameRaw(ctx context.Context, username string) ([]*entity.Member, error) {
	var members []*entity.Member
	err := r.NewRaw("SELECT * FROM ? WHERE username = ? ORDER BY ? ASC",
		bun.Ident("member"), username, bun.Ident(r.PrimaryKey())).
		Scan(ctx, &members)
	return members, err
}

// SearchByBuilder returns member LEFT JOIN team rows matching every present
// field of cond. A nil or empty condition matches all members.
func (r *memberRepository) SearchByBuilder(ctx context.Context, cond *dto.MemberSearchCondition) ([]dto.MemberTeamDto, error) {
	rows := make([]dto.MemberTeamDto, 0)
	q := r.searchQuery(cond).OrderExpr("m.member_id ASC")
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchPage is SearchByBuilder restricted to one page. Rows are ordered by
// member_id unless the request carries its own orders.
func (r *memberRepository) SearchPage(ctx context.Context, cond *dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error) {
	if page == nil {
		page = types.NewDefaultPageRequest(1, types.DefaultPageSize)
	}
	q := r.searchQuery(cond)
	if f := page.GetFilter(); f != nil {
		q = q.Where(f.Schema, f.Args...)
	}

	pagination := types.NewDefaultPagination[dto.MemberTeamDto](page)
	total, err := q.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	if orders := page.GetOrders(); len(orders) > 0 {
		q = q.Order(orders...)
	} else {
		q = q.OrderExpr("m.member_id ASC")
	}
	var rows []*dto.MemberTeamDto
	err = q.Offset(page.GetOffset()).Limit(page.GetPageSize()).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = rows
	return pagination, nil
}

func (r *memberRepository) searchQuery(cond *dto.MemberSearchCondition) *bun.SelectQuery {
	q := selectMemberTeam(r.NewSelect()).
		Join("LEFT JOIN team AS t ON t.team_id = m.team_id")
	for _, p := range searchPredicates(cond, r.legacyAgeLoe) {
		q = q.Where(p.Schema, p.Args...)
	}
	return q
}

// searchPredicates turns the present fields of cond into WHERE fragments.
// Absent fields contribute nothing, so the fragments are always ANDed.
func searchPredicates(cond *dto.MemberSearchCondition, legacyAgeLoe bool) []types.QueryFilter {
	var predicates []types.QueryFilter
	if cond == nil {
		return predicates
	}
	if cond.HasUsername() {
		predicates = append(predicates, *types.NewQueryFilter("m.username = ?", cond.Username))
	}
	if cond.HasTeamName() {
		predicates = append(predicates, *types.NewQueryFilter("t.name = ?", cond.TeamName))
	}
	if cond.AgeGoe != nil {
		predicates = append(predicates, *types.NewQueryFilter("m.age >= ?", *cond.AgeGoe))
	}
	if cond.AgeLoe != nil {
		if legacyAgeLoe {
			predicates = append(predicates, *types.NewQueryFilter("m.age >= ?", *cond.AgeLoe))
		} else {
			predicates = append(predicates, *types.NewQueryFilter("m.age <= ?", *cond.AgeLoe))
		}
	}
	return predicates
}

// selectMemberTeam projects member and team columns into dto.MemberTeamDto.
// The caller supplies the join.
func selectMemberTeam(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Model((*entity.Member)(nil)).
		ColumnExpr("m.member_id").
		ColumnExpr("m.username").
		ColumnExpr("m.age").
		ColumnExpr("t.team_id AS team_id").
		ColumnExpr("t.name AS team_name")
}
