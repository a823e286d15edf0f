// Package main implements the drillsched command, which serves the drill
// practice API and administers its database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
