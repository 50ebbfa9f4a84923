// Package config provides configuration structures and utilities for tallyfetch.
// It defines the dataset sources, fetch settings, summary output and run
// history options, and loads overrides from a YAML file and the environment.
package config
