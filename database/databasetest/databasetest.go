// Package databasetest opens throwaway in-memory SQLite databases with the
// application schema applied, for use in tests.
package databasetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/entity"
	"github.com/tomoncle/querystudy/utils"
	"github.com/uptrace/bun"
)

// Config returns a private in-memory SQLite configuration with migrations on
// and the background health check off. QUERYSTUDY_TEST_SQL=true prints every
// statement.
func Config() *database.Config {
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.SlowQueryTime = 0
	cfg.ConnectionConfig.EnableQueryLog = utils.EnvDefaultBool("QUERYSTUDY_TEST_SQL", false)
	cfg.ConnectionConfig.QueryLogFormat = "color"
	cfg.DataMigrateConfig.ForeignKeyFile = ""
	cfg.DataInitConfig.Filepath = ""
	return cfg
}

// New connects a fresh database, applies the migrations and closes it when
// the test ends.
func New(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	manager := database.NewDatabaseManager(Config())
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))

	db := manager.GetDB()
	db.RegisterModel(database.RegisteredModelInstances()...)
	return db
}

// Fixture is the canonical data set: member1..member4 aged 10, 20, 30, 40,
// the first two in TeamA and the others in TeamB.
type Fixture struct {
	TeamA   *entity.Team
	TeamB   *entity.Team
	Members []*entity.Member
}

// Seed stores the canonical data set in db.
func Seed(t testing.TB, db bun.IDB) *Fixture {
	t.Helper()
	ctx := context.Background()

	f := &Fixture{TeamA: entity.NewTeam("TeamA"), TeamB: entity.NewTeam("TeamB")}
	for _, team := range []*entity.Team{f.TeamA, f.TeamB} {
		_, err := db.NewInsert().Model(team).Exec(ctx)
		require.NoError(t, err)
	}

	f.Members = []*entity.Member{
		entity.NewMemberInTeam("member1", 10, f.TeamA),
		entity.NewMemberInTeam("member2", 20, f.TeamA),
		entity.NewMemberInTeam("member3", 30, f.TeamB),
		entity.NewMemberInTeam("member4", 40, f.TeamB),
	}
	for _, m := range f.Members {
		m.SyncTeamID()
		_, err := db.NewInsert().Model(m).Exec(ctx)
		require.NoError(t, err)
	}
	return f
}
