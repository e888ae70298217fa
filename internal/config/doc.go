// Package config loads daynotes configuration by merging environment
// variables, command-line flags, an optional JSON file, and built-in
// defaults, then exposes a validated client view.
package config
