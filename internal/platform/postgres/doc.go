// Package postgres implements the store interfaces backed by PostgreSQL,
// accessed through database/sql with the pgx driver.
package postgres
