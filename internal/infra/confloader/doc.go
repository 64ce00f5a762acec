// Package confloader loads configuration with koanf.
//
// Sources, from lowest to highest priority:
//
//  1. Defaults (the target struct as passed in)
//  2. A YAML configuration file
//  3. A .env file (entries never override variables already set)
//  4. Environment variables (LITEKV_ prefix)
//  5. Explicit maps, used for command-line flags
//
// Watcher reports changes to the configuration file so callers can apply
// the settings that are safe to change at runtime.
package confloader
