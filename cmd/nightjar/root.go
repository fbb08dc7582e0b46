package nightjar

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON          bool
	flagSARIF         bool
	flagThreads       int
	flagFailOn        string
	flagNoColor       bool
	flagMinConfidence float64
	flagVerbose       bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the nightjar CLI.
var rootCmd = &cobra.Command{
	Use:           "nightjar",
	Short:         "Audit third-party package source for malicious behavior",
	Long:          "Nightjar statically analyzes extracted package source trees and reports process injection, exfiltration, droppers, obfuscation, and other supply-chain malware behaviors.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the nightjar CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "suspicious", "exit non-zero on verdicts at or above this label (suspicious|malicious)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().Float64Var(&flagMinConfidence, "min-confidence", 0.0, "only show findings with confidence >= value (0-1)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
}
