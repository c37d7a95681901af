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

const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// QueryFilter is one WHERE fragment with bun placeholders and its arguments.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest selects a window of rows either by page number (1-based) or by
// an explicit zero-based offset, plus optional filter and ordering.
type PageRequest struct {
	page     int
	pageSize int
	offset   int
	byOffset bool
	filter   *QueryFilter
	orders   []string // "m.username DESC", "m.member_id ASC"
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	if p.pageSize > MaxPageSize {
		p.pageSize = MaxPageSize
	}
	return p.pageSize
}

// GetPage returns the 1-based page. For offset requests it is the page the
// offset falls in.
func (p *PageRequest) GetPage() int {
	if p.byOffset {
		return p.GetOffset()/p.GetPageSize() + 1
	}
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	if p.byOffset {
		if p.offset < 0 {
			p.offset = 0
		}
		return p.offset
	}
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetFilter() *QueryFilter {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

func NewPageRequest(page int, pageSize int, filter *QueryFilter, orders []string) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, orders: orders}
}

func NewPageRequestWithFilter(page int, pageSize int, filter *QueryFilter) *PageRequest {
	return NewPageRequest(page, pageSize, filter, nil)
}

func NewPageRequestWithOrders(page int, pageSize int, orders ...string) *PageRequest {
	return NewPageRequest(page, pageSize, nil, orders)
}

func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil, nil)
}

// NewOffsetPageRequest selects limit rows starting at the zero-based offset.
func NewOffsetPageRequest(offset int, limit int, orders ...string) *PageRequest {
	return &PageRequest{offset: offset, pageSize: limit, byOffset: true, orders: orders}
}

// Pagination is one page of results. Total counts all matching rows.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Offset   int
	Total    int
	Items    []*T
}

func NewDefaultPagination[T any](req *PageRequest) *Pagination[T] {
	return &Pagination[T]{
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Offset:   req.GetOffset(),
		Items:    make([]*T, 0),
	}
}

// TotalPages is the number of pages of PageSize needed for Total rows.
func (p *Pagination[T]) TotalPages() int {
	if p.PageSize < 1 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether rows exist after this page.
func (p *Pagination[T]) HasNext() bool {
	return p.Offset+len(p.Items) < p.Total
}
