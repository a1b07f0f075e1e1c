// Package main hosts the revoice CLI entrypoint and command graph.
//
// The Cobra command tree runs single videos through the pipeline, serves the
// HTTP upload API, and reads the run history. Configuration resolution and
// logger setup live in commandContext so subcommands only wire services
// together and render results.
package main
