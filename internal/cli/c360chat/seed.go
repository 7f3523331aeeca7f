package c360chat

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360chat/c360chat/internal/app"
	"github.com/c360chat/c360chat/internal/demo/seed"
	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/storage"
)

func newSeedCmd(opts Options, flags *globalFlags) *cobra.Command {
	seedCfg := seed.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic Customer360 parquet extract",
		Long: `Generates deterministic Customer360 rows and writes them as parquet parts under
<dataset>/<table>/date=YYYY-MM-DD/, either to the configured object store or to
--output on local disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, flags)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg, cmd.ErrOrStderr())

			runCfg := seedCfg
			runCfg.Dataset = cfg.Warehouse.Dataset
			runCfg.Table = cfg.Warehouse.Table

			var store storage.ObjectStore
			if runCfg.OutputDir == "" {
				store, err = app.OpenObjectStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
			}
			svc, err := seed.NewService(runCfg, store, logger)
			if err != nil {
				return err
			}
			result, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range result.Paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d customers in %d parts\n", result.Rows, len(result.Paths))
			return nil
		},
	}
	cmd.Flags().IntVar(&seedCfg.Customers, "customers", seedCfg.Customers, "number of customers to generate")
	cmd.Flags().IntVar(&seedCfg.PartSize, "part-size", seedCfg.PartSize, "rows per parquet part")
	cmd.Flags().Int64Var(&seedCfg.Seed, "seed", seedCfg.Seed, "random seed")
	cmd.Flags().StringVar(&seedCfg.OutputDir, "output", "", "write parts under this directory instead of the object store")
	return cmd
}
