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

import (
	"fmt"
	"strings"
)

// MemberSearchCondition filters members; every field is optional. Blank
// strings and nil bounds leave the corresponding column unfiltered.
type MemberSearchCondition struct {
	Username string `json:"username,omitempty" yaml:"username"`
	TeamName string `json:"team_name,omitempty" yaml:"team_name"`
	AgeGoe   *int   `json:"age_goe,omitempty" yaml:"age_goe"`
	AgeLoe   *int   `json:"age_loe,omitempty" yaml:"age_loe"`
}

func NewMemberSearchCondition(username, teamName string, ageGoe, ageLoe *int) *MemberSearchCondition {
	return &MemberSearchCondition{Username: username, TeamName: teamName, AgeGoe: ageGoe, AgeLoe: ageLoe}
}

func (c *MemberSearchCondition) HasUsername() bool {
	return c != nil && strings.TrimSpace(c.Username) != ""
}

func (c *MemberSearchCondition) HasTeamName() bool {
	return c != nil && strings.TrimSpace(c.TeamName) != ""
}

// IsEmpty reports whether the condition filters nothing.
func (c *MemberSearchCondition) IsEmpty() bool {
	return !c.HasUsername() && !c.HasTeamName() && (c == nil || (c.AgeGoe == nil && c.AgeLoe == nil))
}

func (c *MemberSearchCondition) String() string {
	if c == nil {
		return "MemberSearchCondition()"
	}
	return fmt.Sprintf("MemberSearchCondition(username=%s, teamName=%s, ageGoe=%s, ageLoe=%s)",
		c.Username, c.TeamName, intString(c.AgeGoe), intString(c.AgeLoe))
}

// IntPtr returns a pointer to v, for filling AgeGoe and AgeLoe.
func IntPtr(v int) *int {
	return &v
}

func intString(p *int) string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprint(*p)
}
