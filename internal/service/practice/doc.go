// Package practice orchestrates the scheduling engine and the practice
// record store: lazy creation of records, recording practices, due listings,
// forecasts and resets, always on behalf of an explicit owner.
package practice
