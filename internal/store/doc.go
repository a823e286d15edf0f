// Package store defines interfaces for practice record persistence.
// These interfaces abstract the underlying database from the scheduling
// service so that the same rules run against Postgres in production and
// SQLite in embedded or offline deployments.
package store
