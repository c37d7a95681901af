// Package dto contains search conditions and the flat read models that
// queries project into.
package dto
