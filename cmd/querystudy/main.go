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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/tomoncle/querystudy"
	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/dto"
	"github.com/tomoncle/querystudy/types"
	"github.com/tomoncle/querystudy/utils"
)

func main() {
	configPath := flag.String("config", utils.EnvDefaultString("QUERYSTUDY_CONFIG", "configs/config.yaml"), "path to the YAML config file")
	command := flag.String("command", "search", "command (migrate|rollback|seed|search|members|stats|health)")
	timeout := flag.Duration("timeout", utils.EnvDefaultDuration("QUERYSTUDY_TIMEOUT", time.Minute), "command timeout")
	version := flag.String("version", "", "migration version for rollback")
	username := flag.String("username", "", "search: exact username")
	team := flag.String("team", "", "search: exact team name; members: team to list")
	ageGoe := flag.Int("age-goe", -1, "search: minimum age, negative for none")
	ageLoe := flag.Int("age-loe", -1, "search: maximum age, negative for none")
	page := flag.Int("page", 0, "search: 1-based page, 0 returns every match")
	pageSize := flag.Int("page-size", 0, "search: rows per page, 0 for the configured default")
	flag.Parse()

	log := utils.NewLogger("QUERYSTUDY")

	cfg, err := querystudy.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load config")
		os.Exit(1)
	}
	cfg.ApplyLogging()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runMigrations := *command == "migrate" || cfg.Migrate.EnableMigrateOnStartup
	db, err := database.InitDatabaseWithOptions(ctx, cfg.ConfigLoader(), runMigrations)
	if err != nil {
		log.WithError(err).Error("failed to initialize database")
		os.Exit(1)
	}
	defer func() { _ = database.CloseDB() }()

	svc := querystudy.NewMemberService(cfg.MemberOptions()...)

	var out interface{}
	switch *command {
	case "migrate":
		applied, err := database.NewMigrationManager(db, nil, cfg.ConfigLoader()).GetAppliedMigrations(ctx)
		if err != nil {
			fail(err, "failed to list migrations")
		}
		fks := database.NewConfigurableForeignKeyManager(nil, cfg.Migrate.ForeignKeyFile)
		out = map[string]interface{}{
			"applied":          applied,
			"foreign_key_file": fks.GetConfigPath(),
			"foreign_keys":     fks.ListAllConstraints(),
		}
	case "rollback":
		if *version == "" {
			fail(nil, "rollback needs -version")
		}
		if err := database.NewMigrationManager(db, nil, cfg.ConfigLoader()).RollbackMigration(ctx, *version); err != nil {
			fail(err, "failed to roll back migration")
		}
		out = map[string]string{"rolled_back": *version}
	case "seed":
		if err := database.InitData(ctx); err != nil {
			fail(err, "failed to seed data")
		}
		out = map[string]string{"seeded_from": cfg.DataInit.Filepath}
	case "search":
		cond := dto.NewMemberSearchCondition(*username, *team, optionalInt(*ageGoe), optionalInt(*ageLoe))
		if *page > 0 {
			size := *pageSize
			if size <= 0 {
				size = cfg.Search.DefaultPageSize
			}
			out, err = svc.SearchPage(ctx, cond, types.NewDefaultPageRequest(*page, size))
		} else {
			out, err = svc.Search(ctx, cond)
		}
		if err != nil {
			fail(err, "search failed")
		}
	case "members":
		if *team == "" {
			if out, err = svc.All(ctx); err != nil {
				fail(err, "failed to list members")
			}
			break
		}
		roster, err := svc.Roster(ctx, *team)
		if err != nil {
			fail(err, "failed to list members")
		}
		out = map[string]interface{}{"team": roster, "members": roster.Members}
	case "stats":
		if out, err = svc.Stats(ctx); err != nil {
			fail(err, "failed to compute stats")
		}
	case "health":
		out = map[string]interface{}{
			"health": database.GetHealthStatus(ctx),
			"stats":  database.GetDatabaseStats(),
		}
	default:
		fail(nil, "unsupported command: "+*command)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err, "failed to write output")
	}
	log.WithField("command", *command).Info("command completed")
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return dto.IntPtr(v)
}

func fail(err error, msg string) {
	log := utils.NewLogger("QUERYSTUDY")
	if err != nil {
		log.WithError(err).Error(msg)
	} else {
		log.Error(msg)
	}
	_ = database.CloseDB()
	os.Exit(1)
}
