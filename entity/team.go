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

package entity

import (
	"fmt"
	"slices"

	"github.com/uptrace/bun"
)

// Team owns zero or more members. Members is a cache of the relation: it is
// filled by Member.ChangeTeam or by loading the "Members" relation, and is
// never written to the store from this side.
type Team struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID      int64     `bun:"team_id,pk,autoincrement" json:"id"`
	Name    string    `bun:"name,notnull" json:"name"`
	Members []*Member `bun:"rel:has-many,join:team_id=team_id" json:"-"`
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(id=%d, name=%s)", t.ID, t.Name)
}

func (t *Team) removeMember(m *Member) {
	for i, cur := range t.Members {
		if cur == m {
			t.Members = slices.Delete(slices.Clone(t.Members), i, i+1)
			return
		}
	}
}

func (t *Team) hasMember(m *Member) bool {
	for _, cur := range t.Members {
		if cur == m {
			return true
		}
	}
	return false
}
