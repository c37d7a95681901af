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

package querystudy_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querystudy"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  type: postgres
  host: db.local
  port: 5432
  dbname: study
  health_check_interval: 30s
migrate:
  enable_foreign_key: false
search:
  legacy_age_loe: true
log:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := querystudy.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.Database.HealthCheckInterval)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Migrate.EnableForeignKey)
	assert.True(t, cfg.Migrate.EnableMigrateOnStartup)
	assert.True(t, cfg.Search.LegacyAgeLoe)
	assert.Equal(t, 10, cfg.Search.DefaultPageSize)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Len(t, cfg.MemberOptions(), 1)

	dbCfg := cfg.ConfigLoader()
	assert.Equal(t, "db.local", dbCfg.ConnectionConfig.Host)
	assert.Equal(t, "configs/sql", dbCfg.DataInitConfig.Filepath)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := querystudy.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unclosed"), 0o644))
	_, err = querystudy.LoadConfig(path)
	assert.Error(t, err)
}
