package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/ferreriwork/internal/config"
	"github.com/ahinestrog/ferreriwork/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("ferreriwork")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "ferreriwork",
		Short:         "Tienda Ferreri-Work: catálogo, cotizaciones en PDF y reclamos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			logging.Setup(cfg.LogLevel)
		},
	}
	cfgFn := func() *config.Config { return cfg }

	root.AddCommand(
		newServeCmd(cfgFn),
		newCatalogCmd(cfgFn),
		newHashPasswordCmd(),
	)
	return root
}
