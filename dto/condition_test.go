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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberSearchCondition_Presence(t *testing.T) {
	var nilCond *MemberSearchCondition
	assert.False(t, nilCond.HasUsername())
	assert.False(t, nilCond.HasTeamName())
	assert.True(t, nilCond.IsEmpty())
	assert.Equal(t, "MemberSearchCondition()", nilCond.String())

	blank := NewMemberSearchCondition("  ", "\t", nil, nil)
	assert.False(t, blank.HasUsername())
	assert.False(t, blank.HasTeamName())
	assert.True(t, blank.IsEmpty())

	cond := NewMemberSearchCondition("member1", "TeamA", nil, IntPtr(20))
	assert.True(t, cond.HasUsername())
	assert.True(t, cond.HasTeamName())
	assert.False(t, cond.IsEmpty())
	assert.Equal(t, "MemberSearchCondition(username=member1, teamName=TeamA, ageGoe=<nil>, ageLoe=20)", cond.String())

	assert.False(t, (&MemberSearchCondition{AgeGoe: IntPtr(0)}).IsEmpty())
}

func TestIntPtr(t *testing.T) {
	a, b := IntPtr(5), IntPtr(5)
	assert.Equal(t, 5, *a)
	assert.NotSame(t, a, b)
}

func TestMemberTeamDtoString(t *testing.T) {
	d := MemberTeamDto{MemberID: 1, Username: "member1", Age: 10, TeamID: 2, TeamName: "TeamA"}
	assert.Equal(t, "MemberTeamDto(memberId=1, username=member1, age=10, teamId=2, teamName=TeamA)", d.String())
}
