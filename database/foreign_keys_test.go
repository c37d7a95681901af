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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraint_SQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "member",
		Column:          "team_id",
		ReferenceTable:  "team",
		ReferenceColumn: "team_id",
		OnDelete:        "set null",
	}
	assert.Equal(t, "fk_member_team_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE member ADD CONSTRAINT fk_member_team_id FOREIGN KEY (team_id) REFERENCES team(team_id) ON DELETE SET NULL",
		fk.GenerateSQL())

	fk.ConstraintName = "member_team"
	assert.Equal(t, "member_team", fk.GenerateConstraintName())
}

func TestForeignKeyManager_Validate(t *testing.T) {
	fkm := NewForeignKeyManager(nil)
	assert.Empty(t, fkm.ValidateConstraints())
	assert.Len(t, fkm.GetConstraintsByTable("MEMBER"), 1)
	assert.Empty(t, fkm.GetConstraintsByTable("team"))

	fkm.constraints = append(fkm.constraints, ForeignKeyConstraint{Table: "x", OnUpdate: "EXPLODE"})
	// missing column, reference table, reference column and a bad action
	assert.Len(t, fkm.ValidateConstraints(), 4)
}

func TestConfigurableForeignKeyManager(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fk.yaml")
	content := `foreign_keys:
  - table: member
    column: team_id
    reference_table: team
    reference_column: team_id
    on_delete: CASCADE
  - table: member
    column: mentor_id
    reference_table: member
    reference_column: member_id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfm := NewConfigurableForeignKeyManager(nil, path)
	assert.Equal(t, path, cfm.GetConfigPath())
	require.Len(t, cfm.ListAllConstraints(), 2)
	assert.Equal(t, "CASCADE", cfm.ListAllConstraints()[0].OnDelete)

	out := filepath.Join(dir, "nested", "export.yaml")
	require.NoError(t, cfm.ExportToConfig(out))
	exported := NewConfigurableForeignKeyManager(nil, out)
	assert.Equal(t, cfm.ListAllConstraints(), exported.ListAllConstraints())

	require.NoError(t, os.WriteFile(path, []byte("foreign_keys: []\n"), 0o644))
	require.NoError(t, cfm.ReloadConfig())
	assert.Empty(t, cfm.ListAllConstraints())
}

func TestConfigurableForeignKeyManager_Fallback(t *testing.T) {
	cfm := NewConfigurableForeignKeyManager(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, defaultForeignKeyConstraints(), cfm.ListAllConstraints())
	assert.Error(t, cfm.ReloadConfig())
	assert.Equal(t, defaultForeignKeyConstraints(), cfm.ListAllConstraints())
}
