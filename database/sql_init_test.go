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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSQL(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseFileOrder(t *testing.T) {
	assert.Equal(t, 1, parseFileOrder("001_teams.sql"))
	assert.Equal(t, 42, parseFileOrder("42_members.sql"))
	assert.Equal(t, 999, parseFileOrder("notes.sql"))
	assert.Equal(t, 999, parseFileOrder("v1_members.sql"))
}

func TestSplitSQLStatements(t *testing.T) {
	content := `-- teams
INSERT INTO team (name)
  VALUES ('TeamA');

INSERT INTO team (name) VALUES ('TeamB');
SELECT 1`
	assert.Equal(t, []string{
		"INSERT INTO team (name) VALUES ('TeamA')",
		"INSERT INTO team (name) VALUES ('TeamB')",
		"SELECT 1",
	}, splitSQLStatements(content))
	assert.Empty(t, splitSQLStatements("-- only a comment\n\n"))
}

func TestSQLInitManager_GetSQLFiles(t *testing.T) {
	root := t.TempDir()
	writeSQL(t, root, "common/002_b.sql", "SELECT 1;")
	writeSQL(t, root, "common/001_a.sql", "SELECT 1;")
	writeSQL(t, root, "common/readme.txt", "ignored")
	writeSQL(t, root, "environments/dev/001_dev.sql", "SELECT 1;")
	writeSQL(t, root, "environments/dev/extra.sql", "SELECT 1;")
	writeSQL(t, root, "environments/prod/001_prod.sql", "SELECT 1;")

	s := NewSQLInitManager(nil, "dev")
	s.SetSQLRootPath(root)
	files, err := s.GetSQLFiles()
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "001_dev.sql", "extra.sql"}, names)
	assert.Equal(t, commonSQLDir, files[0].Environment)
	assert.Equal(t, "dev", files[3].Environment)
	assert.Equal(t, 999, files[3].Order)
}

func TestSQLInitManager_ExecuteInitialization(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	root := t.TempDir()
	writeSQL(t, root, "common/001_env.sql", "INSERT INTO kv (k, v) VALUES ('env', '{{.ENVIRONMENT}}');")
	writeSQL(t, root, "environments/test/001_pair.sql", "INSERT INTO kv (k, v) VALUES ('a', '1');\nINSERT INTO kv (k, v) VALUES ('b', '2');")

	s := NewSQLInitManager(db, "test")
	s.SetSQLRootPath(root)
	results, err := s.ExecuteInitialization(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, int64(2), results[1].RowsAffected)

	var env string
	require.NoError(t, db.NewSelect().Table("kv").Column("v").Where("k = ?", "env").Scan(ctx, &env))
	assert.Equal(t, "test", env)

	count, err := db.NewSelect().Table("kv").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSQLInitManager_StopsAtFailure(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	root := t.TempDir()
	writeSQL(t, root, "common/001_ok.sql", "INSERT INTO kv (k, v) VALUES ('a', '1');")
	writeSQL(t, root, "common/002_dup.sql", "INSERT INTO kv (k, v) VALUES ('b', '2');\nINSERT INTO kv (k, v) VALUES ('a', '3');")
	writeSQL(t, root, "common/003_never.sql", "INSERT INTO kv (k, v) VALUES ('c', '4');")

	s := NewSQLInitManager(db, "test")
	s.SetSQLRootPath(root)
	results, err := s.ExecuteInitialization(ctx)
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[1].Success)

	is, sqlErr := IsSqlError(results[1].Error)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, sqlErr)

	// the failing file rolled back as a whole
	count, err := db.NewSelect().Table("kv").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
