// Package config loads process configuration from a YAML file and
// HOCONNECT_* environment variables, in that order of precedence.
package config
