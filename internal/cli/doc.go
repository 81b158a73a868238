// Package cli provides command-line interface setup and configuration
// for the blogtrans application. It builds the cobra command tree, binds
// flags to viper keys and resolves configuration from the config file,
// the environment and .env before a subcommand runs.
package cli
