// Package domain contains the core entities of drill scheduling: the
// per-user practice state of a drill, the recall quality a user reports
// after practicing, and the read-only drill catalog metadata joined for
// display. It has no knowledge of storage or transport.
package domain
