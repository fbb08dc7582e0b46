// Package nightjar provides the command-line interface for the nightjar
// package auditor. It configures subcommands (audit, detectors, baseline),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/nightjar-sec/nightjar/cmd/nightjar"
//	func main() { nightjar.Execute() }
package nightjar
