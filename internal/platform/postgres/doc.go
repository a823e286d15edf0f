// Package postgres provides the PostgreSQL implementation of the practice
// record store, together with the embedded schema migrations it runs on.
// Connections go through database/sql with the pgx stdlib driver.
package postgres
