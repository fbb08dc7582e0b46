package nightjar

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nightjar-sec/nightjar/internal/detectors"
)

func init() {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List available detectors",
		Run: func(_ *cobra.Command, _ []string) {
			for _, d := range detectors.All() {
				fmt.Printf("%-22s %-32s weight %.1f\n", d.ID, d.Category, d.Weight)
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
