// Package config defines the settings used by the alarm engine and the native
// scheduler daemon and provides helpers to load, validate and save them in
// YAML format.
package config
