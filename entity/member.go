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

	"github.com/uptrace/bun"
)

// DefaultAge is the age NewMember assigns. An explicit age, zero included,
// is stored as given.
const DefaultAge = 10

// Member belongs to at most one team. An empty Username is stored as NULL.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64  `bun:"member_id,pk,autoincrement" json:"id"`
	Username string `bun:"username,nullzero" json:"username"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   int64  `bun:"team_id,nullzero" json:"team_id,omitempty"`
	Team     *Team  `bun:"rel:belongs-to,join:team_id=team_id" json:"team,omitempty"`
}

func NewMember(username string) *Member {
	return NewMemberWithAge(username, DefaultAge)
}

func NewMemberWithAge(username string, age int) *Member {
	return NewMemberInTeam(username, age, nil)
}

// NewMemberInTeam creates a member and, when team is not nil, joins it.
func NewMemberInTeam(username string, age int, team *Team) *Member {
	m := &Member{Username: username, Age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// ChangeTeam is the only way to move a member between teams. It keeps both
// ends in agreement: the member points at team, the previous team's loaded
// collection no longer holds the member and the new team's does. A nil team
// detaches the member.
func (m *Member) ChangeTeam(team *Team) {
	if m.Team == team && team != nil && team.hasMember(m) {
		return
	}
	if m.Team != nil {
		m.Team.removeMember(m)
	}
	m.Team = team
	if team == nil {
		m.TeamID = 0
		return
	}
	m.TeamID = team.ID
	team.Members = append(team.Members, m)
}

// SyncTeamID copies the team's generated key after the team was saved.
func (m *Member) SyncTeamID() {
	if m.Team != nil {
		m.TeamID = m.Team.ID
	}
}

func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Username, m.Age)
}
