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

	"github.com/tomoncle/querystudy/dto"
	"github.com/tomoncle/querystudy/entity"
	"github.com/tomoncle/querystudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// Lookups by id use the model's primary key column, whatever its name.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// TransactionRepository runs writes on a caller-supplied bun.Tx (or any bun.IDB).
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx bun.IDB, fields []string, duplicateKeys []string, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T) error
	DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	DB() *bun.DB
	Dialect() schema.Dialect
	PrimaryKey() string
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// MemberRepository stores members and runs the member query catalog. Finders
// returning a single member yield nil and no error when nothing matches.
type MemberRepository interface {
	Repository[entity.Member]

	Save(ctx context.Context, member *entity.Member) error
	SaveWithTx(ctx context.Context, tx bun.IDB, member *entity.Member) error
	FindByID(ctx context.Context, id int64) (*entity.Member, error)
	FindAll(ctx context.Context) ([]*entity.Member, error)
	FindAllRaw(ctx context.Context) ([]*entity.Member, error)
	FindByUsername(ctx context.Context, username string) ([]*entity.Member, error)
	FindByUsernameRaw(ctx context.Context, username string) ([]*entity.Member, error)
	SearchByBuilder(ctx context.Context, cond *dto.MemberSearchCondition) ([]dto.MemberTeamDto, error)
	SearchPage(ctx context.Context, cond *dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error)

	FindOne(ctx context.Context, username string, age int) (*entity.Member, error)
	Count(ctx context.Context) (int, error)
	FindByAgeSorted(ctx context.Context, age int) ([]*entity.Member, error)
	AgeStats(ctx context.Context) (*dto.AgeStats, error)
	AverageAgeByTeam(ctx context.Context, having string) ([]dto.TeamAgeStat, error)
	FindByTeamName(ctx context.Context, teamName string) ([]*entity.Member, error)
	FindNamedAfterTeam(ctx context.Context) ([]*entity.Member, error)
	JoinOnTeamName(ctx context.Context, teamName string) ([]dto.MemberTeamDto, error)
	JoinOnUsername(ctx context.Context) ([]dto.MemberTeamDto, error)
	FindByUsernameWithTeam(ctx context.Context, username string) ([]*entity.Member, error)
	FindOldest(ctx context.Context) ([]*entity.Member, error)
	FindAgeAtLeastAverage(ctx context.Context) ([]*entity.Member, error)
	FindAgeInOlderThan(ctx context.Context, minAge int) ([]*entity.Member, error)
	Usernames(ctx context.Context) ([]string, error)
	MemberDtos(ctx context.Context) ([]dto.MemberDto, error)
	UserDtos(ctx context.Context) ([]dto.UserDto, error)
}

// TeamRepository stores teams. A team's Members are only filled by
// LoadMembers or FindWithMembers.
type TeamRepository interface {
	Repository[entity.Team]

	Save(ctx context.Context, team *entity.Team) error
	SaveWithTx(ctx context.Context, tx bun.IDB, team *entity.Team) error
	FindByID(ctx context.Context, id int64) (*entity.Team, error)
	FindByName(ctx context.Context, name string) (*entity.Team, error)
	FindByNameWithTx(ctx context.Context, tx bun.IDB, name string) (*entity.Team, error)
	FindAll(ctx context.Context) ([]*entity.Team, error)
	LoadMembers(ctx context.Context, team *entity.Team) error
	FindWithMembers(ctx context.Context, name string) (*entity.Team, error)
}
