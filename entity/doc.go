// Package entity holds the Member and Team models and registers them for
// migrations.
package entity
