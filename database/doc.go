// Package database provides connection management, migrations, foreign key
// handling, SQL seeding, configuration types, logging and health checks on
// top of Bun.
package database
