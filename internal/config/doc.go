// Package config loads nightjar configuration from YAML files: detector
// enablement and weights, classification thresholds, and analysis limits.
// It is internal; CLI code maps flags and files into engine configuration.
package config
