// Package service groups the application use cases that sit between the HTTP
// layer and persistence.
//
// Subpackages:
//
//   - practice: records drill practice, lists and counts due drills, forecasts
//     upcoming load and resets progress, running each read-modify-write in a
//     single transaction against store.PracticeStore.
//   - auth: validates and issues the bearer tokens that identify the owner of
//     practice records.
//
// Services receive their dependencies through constructor injection and
// depend on the store interfaces, never on a specific database driver.
package service
