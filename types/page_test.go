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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_PageBased(t *testing.T) {
	req := NewPageRequestWithOrders(3, 20, "m.age DESC")
	assert.Equal(t, 3, req.GetPage())
	assert.Equal(t, 20, req.GetPageSize())
	assert.Equal(t, 40, req.GetOffset())
	assert.Equal(t, []string{"m.age DESC"}, req.GetOrders())
	assert.Nil(t, req.GetFilter())

	defaults := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, defaults.GetPage())
	assert.Equal(t, DefaultPageSize, defaults.GetPageSize())
	assert.Zero(t, defaults.GetOffset())

	assert.Equal(t, MaxPageSize, NewDefaultPageRequest(1, 5000).GetPageSize())

	filtered := NewPageRequestWithFilter(1, 10, NewQueryFilter("m.age > ?", 20))
	assert.Equal(t, "m.age > ?", filtered.GetFilter().Schema)
	assert.Equal(t, []interface{}{20}, filtered.GetFilter().Args)
}

func TestPageRequest_OffsetBased(t *testing.T) {
	req := NewOffsetPageRequest(1, 2, "m.username DESC")
	assert.Equal(t, 1, req.GetOffset())
	assert.Equal(t, 2, req.GetPageSize())
	assert.Equal(t, 1, req.GetPage())

	assert.Equal(t, 3, NewOffsetPageRequest(5, 2).GetPage())
	assert.Zero(t, NewOffsetPageRequest(-4, 2).GetOffset())
}

func TestPagination(t *testing.T) {
	p := NewDefaultPagination[int](NewOffsetPageRequest(1, 2))
	assert.Equal(t, 1, p.Offset)
	assert.Equal(t, 2, p.PageSize)
	assert.NotNil(t, p.Items)
	assert.Zero(t, p.TotalPages())
	assert.False(t, p.HasNext())

	one, two := 1, 2
	p.Total = 4
	p.Items = []*int{&one, &two}
	assert.Equal(t, 2, p.TotalPages())
	assert.True(t, p.HasNext())

	p.Total = 3
	assert.False(t, p.HasNext())
}
