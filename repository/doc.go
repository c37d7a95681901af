// Package repository provides the generic Bun repository and the Member and
// Team repositories built on it: lookups, the condition-based member search,
// joins, subqueries, projections, aggregation and pagination.
package repository
