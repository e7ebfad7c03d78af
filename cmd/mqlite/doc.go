// Package main hosts the mqlite CLI entrypoint and command graph.
//
// The Cobra-based command tree opens the configured store for the duration of
// a single command, publishes or reads messages through producer and consumer
// clients, and renders the results as tables or JSON. Configuration
// resolution, logger setup and metrics wiring live in commandContext so that
// subcommands only describe their own flags and output.
package main
