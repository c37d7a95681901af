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

package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/database/databasetest"
	"github.com/tomoncle/querystudy/entity"
)

func migrationVersions(t *testing.T, mm *database.MigrationManager) []string {
	t.Helper()
	applied, err := mm.GetAppliedMigrations(context.Background())
	require.NoError(t, err)
	versions := make([]string, 0, len(applied))
	for _, m := range applied {
		versions = append(versions, m.Version)
	}
	return versions
}

func TestMigrations_CreateAndRollback(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)
	mm := database.NewMigrationManager(db, nil, databasetest.Config())

	assert.Equal(t, []string{"001", "002"}, migrationVersions(t, mm))

	// applying twice is a no-op
	require.NoError(t, mm.RunMigrations(ctx))
	assert.Equal(t, []string{"001", "002"}, migrationVersions(t, mm))

	require.Error(t, mm.RollbackMigration(ctx, "002"))
	require.Error(t, mm.RollbackMigration(ctx, "999"))

	require.NoError(t, mm.RollbackMigration(ctx, "001"))
	assert.Equal(t, []string{"002"}, migrationVersions(t, mm))
	_, err := db.NewSelect().Model((*entity.Member)(nil)).Count(ctx)
	is, sqlErr := database.IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, database.NoTableErr, sqlErr)

	require.NoError(t, mm.RunMigrations(ctx))
	count, err := db.NewSelect().Model((*entity.Member)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMigrations_SeedFromSQLFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	files := map[string]string{
		"common/001_teams.sql":             "INSERT INTO team (name) VALUES ('TeamA');\nINSERT INTO team (name) VALUES ('TeamB');",
		"environments/dev/002_members.sql": "INSERT INTO member (username, age, team_id) SELECT 'member1', 10, team_id FROM team WHERE name = 'TeamA';",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := databasetest.Config()
	cfg.DataInitConfig.AutoInitOnMigration = true
	cfg.DataInitConfig.Filepath = root
	cfg.DataInitConfig.Environment = "dev"

	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))

	db := manager.GetDB()
	mm := database.NewMigrationManager(db, nil, cfg)
	assert.Equal(t, []string{"001", "002", "003"}, migrationVersions(t, mm))

	var members []*entity.Member
	require.NoError(t, db.NewSelect().Model(&members).Relation("Team").Scan(ctx))
	require.Len(t, members, 1)
	assert.Equal(t, "member1", members[0].Username)
	assert.Equal(t, "TeamA", members[0].Team.Name)
}

func TestInitDatabaseWithOptions_Global(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = database.CloseDB() })

	_, err := database.InitDB(nil)
	require.Error(t, err)
	require.Error(t, database.RunMigrations(ctx))

	db, err := database.InitDatabaseWithOptions(ctx, databasetest.Config(), true)
	require.NoError(t, err)
	assert.Same(t, db, database.GetDB())
	assert.NotNil(t, database.GetDatabaseManager())
	assert.True(t, database.GetHealthStatus(ctx).Healthy)
	assert.Equal(t, 1, database.GetDatabaseStats().MaxOpenConns)

	require.NoError(t, database.CloseDB())
	assert.Nil(t, database.GetDB())
	assert.False(t, database.GetHealthStatus(ctx).Healthy)
}
