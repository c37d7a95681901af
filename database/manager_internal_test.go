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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func sqliteConfig() *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = memoryDBName
	cfg.ConnectionConfig.HealthCheckInterval = 0
	return cfg
}

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()
	dm := NewDatabaseManager(sqliteConfig())
	require.NoError(t, dm.Connect(context.Background()))
	t.Cleanup(func() { _ = dm.Disconnect() })
	return dm.GetDB()
}

func TestSqliteDSN(t *testing.T) {
	first := sqliteDSN(memoryDBName)
	second := sqliteDSN(memoryDBName)
	assert.True(t, strings.HasPrefix(first, "file:memdb"))
	assert.Contains(t, first, "mode=memory&cache=shared")
	assert.NotEqual(t, first, second)

	assert.Equal(t, "file:test.db?cache=shared", sqliteDSN("file:test.db?cache=shared"))
	assert.Equal(t, "data.db", sqliteDSN("data.db"))
	assert.Equal(t, "data.db", sqliteDSN("data"))
}

func TestDatabaseManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	dm := NewDatabaseManager(sqliteConfig())

	assert.Error(t, dm.Ping(ctx))
	assert.False(t, dm.HealthCheck(ctx).Healthy)
	assert.Equal(t, &DBStats{}, dm.GetStats())

	require.NoError(t, dm.Connect(ctx))
	require.NoError(t, dm.Connect(ctx))
	require.NoError(t, dm.Ping(ctx))

	status := dm.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.MaxOpenConns)
	assert.Equal(t, 1, dm.GetStats().MaxOpenConns)

	require.NoError(t, dm.Reconnect(ctx))
	require.NoError(t, dm.Ping(ctx))

	require.NoError(t, dm.Disconnect())
	assert.Nil(t, dm.GetDB())
	require.NoError(t, dm.Disconnect())
}

func TestDatabaseManager_UnsupportedType(t *testing.T) {
	cfg := sqliteConfig()
	cfg.ConnectionConfig.Type = "oracle"
	err := NewDatabaseManager(cfg).Connect(context.Background())
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestDatabaseFactory_EnvOverride(t *testing.T) {
	t.Setenv("DB_TYPE", "oracle")
	_, err := NewDatabaseFactory().CreateFromConfig(sqliteConfig())
	assert.ErrorContains(t, err, "unsupported database type")

	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PORT", "6000")
	t.Setenv("DB_QUERY_LOG_FORMAT", "color")
	cfg := sqliteConfig()
	cfg.ConnectionConfig.Type = "mysql"
	f := NewDatabaseFactory()
	_, err = f.CreateFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
	assert.Equal(t, 6000, cfg.ConnectionConfig.Port)
	assert.Equal(t, "color", cfg.ConnectionConfig.QueryLogFormat)
	assert.Nil(t, f.GetDB())

	require.NoError(t, f.InitializeDatabase(context.Background(), false))
	assert.NotNil(t, f.GetDB())
	assert.True(t, f.GetHealthStatus(context.Background()).Healthy)
	require.NoError(t, f.Close())
}
