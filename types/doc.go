// Package types holds query filters and pagination containers shared by
// repositories and services.
package types
