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

package dto

import "fmt"

// MemberTeamDto is one row of member LEFT JOIN team. Team fields are zero
// when the member has no team or the join condition did not match.
type MemberTeamDto struct {
	MemberID int64  `bun:"member_id" json:"member_id"`
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age" json:"age"`
	TeamID   int64  `bun:"team_id" json:"team_id"`
	TeamName string `bun:"team_name" json:"team_name"`
}

func (d MemberTeamDto) String() string {
	return fmt.Sprintf("MemberTeamDto(memberId=%d, username=%s, age=%d, teamId=%d, teamName=%s)",
		d.MemberID, d.Username, d.Age, d.TeamID, d.TeamName)
}

// MemberDto projects username and age.
type MemberDto struct {
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age" json:"age"`
}

// UserDto is MemberDto with the username exposed as name.
type UserDto struct {
	Name string `bun:"name" json:"name"`
	Age  int    `bun:"age" json:"age"`
}

// AgeStats aggregates the age column over all members.
type AgeStats struct {
	Count int64   `bun:"count" json:"count"`
	Sum   int64   `bun:"sum" json:"sum"`
	Avg   float64 `bun:"avg" json:"avg"`
	Max   int     `bun:"max" json:"max"`
	Min   int     `bun:"min" json:"min"`
}

// TeamAgeStat is the average member age of one team.
type TeamAgeStat struct {
	TeamName string  `bun:"team_name" json:"team_name"`
	AvgAge   float64 `bun:"avg_age" json:"avg_age"`
}
