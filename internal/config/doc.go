// Package config loads application settings from defaults, an optional YAML
// file and DRILLSCHED_ environment variables, then validates them.
package config
