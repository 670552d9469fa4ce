// Package constants centralizes configuration defaults shared across the CLI.
//
// Ports, default matchers, notice thresholds and worker limits live here so
// cmd/, internal/config and the checkers agree on the same values without
// introducing import cycles.
package constants
