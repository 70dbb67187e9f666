// Package main hosts the phisweep CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, opens the configured
// metadata store and hands off to the discovery, workflow and report
// packages. Commands stay thin: new behaviour belongs in internal packages
// first and is surfaced here through a command or flag.
package main
