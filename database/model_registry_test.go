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

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type registryParent struct{}
type registryChild struct{}
type registryAudit struct{}

func TestModelRegistry_Order(t *testing.T) {
	r := NewModelRegistry()
	r.Register(NewModelAdapter((*registryChild)(nil), 20))
	r.Register(NewModelAdapter((*registryParent)(nil), 10))
	r.Register(NewModelAdapter((*registryAudit)(nil), 20))

	models := r.Models()
	assert.Len(t, models, 3)
	assert.IsType(t, (*registryParent)(nil), models[0].Instance())
	assert.IsType(t, (*registryAudit)(nil), models[1].Instance())
	assert.IsType(t, (*registryChild)(nil), models[2].Instance())
}

func TestModelRegistry_ReplacesSameType(t *testing.T) {
	r := NewModelRegistry()
	r.Register(NewModelAdapter((*registryParent)(nil), 10))
	r.Register(NewModelAdapter(&registryParent{}, 5))

	models := r.Models()
	assert.Len(t, models, 1)
	assert.Equal(t, 5, models[0].Priority())
}
