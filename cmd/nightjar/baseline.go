package nightjar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nightjar-sec/nightjar/internal/classify"
	"github.com/nightjar-sec/nightjar/internal/detectors"
	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the accepted-findings baseline",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update baseline from the current audit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, _ := filepath.Abs(flagPath)
			units, err := engine.LoadUnits(engine.LoadConfig{Root: abs})
			if err != nil {
				return err
			}
			res := engine.AnalyzeBatch(context.Background(), units,
				detectors.DefaultRegistry(), classify.DefaultPolicy(), engine.Limits{}, flagThreads)
			if err := report.SaveBaseline(filepath.Join(abs, "nightjar.baseline.json"), res.Findings()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Baseline updated.")
			return nil
		},
	}
	update.Flags().StringVarP(&flagPath, "path", "p", ".", "root of the extracted package tree")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
