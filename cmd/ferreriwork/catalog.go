package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ahinestrog/ferreriwork/internal/auth"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
	"github.com/ahinestrog/ferreriwork/internal/config"
	"github.com/ahinestrog/ferreriwork/internal/quote"
)

func newCatalogCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Operaciones sobre el catálogo de productos",
	}

	var from, to string
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Copia el catálogo completo de un backend a otro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == to {
				return fmt.Errorf("--from y --to son iguales (%s)", from)
			}
			c := cfg()
			src, err := catalog.OpenStore(storeOptions(c, from))
			if err != nil {
				return err
			}
			defer catalog.Close(src)
			dst, err := catalog.OpenStore(storeOptions(c, to))
			if err != nil {
				return err
			}
			defer catalog.Close(dst)

			products, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := dst.Save(cmd.Context(), products); err != nil {
				return err
			}
			log.Info().Str("from", from).Str("to", to).Int("productos", len(products)).Msg("catalog migrated")
			fmt.Fprintf(cmd.OutOrStdout(), "%s productos copiados de %s a %s\n", humanize.Comma(int64(len(products))), from, to)
			return nil
		},
	}
	migrate.Flags().StringVar(&from, "from", "json", "backend origen (json|sqlite|badger)")
	migrate.Flags().StringVar(&to, "to", "sqlite", "backend destino (json|sqlite|badger)")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los productos del backend configurado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			store, err := catalog.OpenStore(storeOptions(c, c.CatalogBackend))
			if err != nil {
				return err
			}
			defer catalog.Close(store)
			products, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOMBRE\tMARCA\tPRECIO")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Nombre, p.Marca, quote.FormatMoney(p.Price()))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(migrate, list)
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <contraseña>",
		Short: "Imprime el hash bcrypt para usar en ADMIN_PASSWORD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
