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

package querystudy

import (
	"fmt"
	"os"

	"github.com/tomoncle/querystudy/database"
	"github.com/tomoncle/querystudy/repository"
	"github.com/tomoncle/querystudy/utils"
	"gopkg.in/yaml.v3"
)

// SearchConfig tunes member search.
type SearchConfig struct {
	// LegacyAgeLoe treats age_loe as a lower bound, as releases before the
	// fix did.
	LegacyAgeLoe    bool `yaml:"legacy_age_loe"`
	DefaultPageSize int  `yaml:"default_page_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config is the application configuration file.
type Config struct {
	Database database.ConnectionConfig  `yaml:"database"`
	Migrate  database.DataMigrateConfig `yaml:"migrate"`
	DataInit database.DataInitConfig    `yaml:"data_init"`
	Search   SearchConfig               `yaml:"search"`
	Log      LogConfig                  `yaml:"log"`
}

// DefaultAppConfig returns the database defaults with a file-backed SQLite
// store.
func DefaultAppConfig() *Config {
	db := database.DefaultConfig()
	db.ConnectionConfig.Type = "sqlite"
	db.ConnectionConfig.DBName = "querystudy"
	return &Config{
		Database: db.ConnectionConfig,
		Migrate:  db.DataMigrateConfig,
		DataInit: db.DataInitConfig,
		Search:   SearchConfig{DefaultPageSize: 10},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over DefaultAppConfig. Keys missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigLoader implements database.AbstractDatabaseConfigProvider.
func (c *Config) ConfigLoader() *database.Config {
	return &database.Config{
		ConnectionConfig:  c.Database,
		DataMigrateConfig: c.Migrate,
		DataInitConfig:    c.DataInit,
	}
}

// MemberOptions translates the search section into repository options.
func (c *Config) MemberOptions() []repository.MemberOption {
	return []repository.MemberOption{repository.WithLegacyAgeLoe(c.Search.LegacyAgeLoe)}
}

// ApplyLogging configures the shared loggers. Loggers created before the
// call keep their format but take the new level.
func (c *Config) ApplyLogging() {
	if c.Log.Format != "" {
		utils.ConfigureConsoleLogFormat(c.Log.Format)
	}
	if c.Log.Level != "" {
		utils.ConfigureLogLevel(c.Log.Level)
	}
}
