// Package config collects the small set of options the CLI assembles once
// and threads explicitly through the engine constructor (§1A ambient
// stack): no ambient globals, no config file, just a value object.
package config

import "os"

// ScenarioDirEnvVar is the environment-style parameter naming the scenario
// directory (§6 CLI surface), read by Load and overridable by an explicit
// --scenario-dir flag in cmd/cssmatch.
const ScenarioDirEnvVar = "CSSMATCH_SCENARIO_DIR"

// Options configures one run of the engine.
type Options struct {
	StylesheetPath  string
	TracePath       string
	ScenarioDir     string
	DebugAssertions bool
}

// Load reads the scenario directory from the environment, leaving the
// stylesheet/trace paths for the caller (typically cmd/cssmatch, which
// resolves them relative to ScenarioDir once flags are parsed).
func Load() Options {
	return Options{ScenarioDir: os.Getenv(ScenarioDirEnvVar)}
}
