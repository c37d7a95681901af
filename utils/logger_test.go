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

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" DEBUG "))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestNewLogger_Registry(t *testing.T) {
	a := NewLogger("TEST_REGISTRY")
	assert.Same(t, a, NewLogger("TEST_REGISTRY"))

	assert.True(t, SetLoggerLevel("TEST_REGISTRY", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST_UNKNOWN", "error"))
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10, CallerWidth: 25}
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow query",
		Data:    logrus.Fields{"b": 2, "a": 1},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.True(t, strings.HasPrefix(line, "2025-01-02 03:04:05.000 WARNING "))
	assert.Contains(t, line, "DATABASE")
	assert.True(t, strings.HasSuffix(line, ": slow query a=1 b=2\n"))
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "APP"}
	out, err := f.Format(&logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.ErrorLevel,
		Message: "failed",
		Data:    logrus.Fields{"error": errors.New("boom")},
	})
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "APP", rec["logger"])
	assert.Equal(t, map[string]interface{}{"error": "boom"}, rec["fields"])
}

func TestSetConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	SetConsoleOutput(&buf)
	defer SetConsoleOutput(os.Stdout)

	l := NewLogger("TEST_OUTPUT")
	l.SetLevel(logrus.InfoLevel)
	l.WithField("k", "v").Info("hello")
	assert.Contains(t, buf.String(), "hello k=v")
}

func TestCompactCaller(t *testing.T) {
	assert.Equal(t, "database.manager.go:12", compactCaller("/src/querystudy/database/manager.go", 12, 40))
	assert.Equal(t, "d.manager.go:12", compactCaller("/src/querystudy/database/manager.go", 12, 16))
	assert.Equal(t, "abc", limitRunes("abcdef", 3))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("TEST_STR", "x")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_BOOL", "maybe")
	t.Setenv("TEST_SECONDS", "3")
	t.Setenv("TEST_DURATION", "250ms")

	assert.Equal(t, "x", EnvDefaultString("TEST_STR", "y"))
	assert.Equal(t, "y", EnvDefaultString("TEST_MISSING", "y"))
	assert.True(t, EnvDefaultBool("TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("TEST_BAD_BOOL", true))
	assert.Equal(t, 3*time.Second, EnvDefaultDuration("TEST_SECONDS", time.Minute))
	assert.Equal(t, 250*time.Millisecond, EnvDefaultDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, EnvDefaultDuration("TEST_MISSING", time.Minute))
}
