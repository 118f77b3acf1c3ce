package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ibeslink/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ibeslink",
	Short: "IBES to Compustat link table builder",
	Long:  "Fetches IBES, CRSP and Compustat reference tables from WRDS, applies the CCM link filters and writes a gvkey to IBES ticker mapping.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
