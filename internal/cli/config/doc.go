// Package config holds the litekv-cli configuration.
//
// Values come from three layers, later ones winning: built-in defaults,
// the YAML file at DefaultConfigPath (or --config), and LITEKV_CLI_*
// environment variables. Command-line flags are applied by the command
// package on top of the result.
package config
