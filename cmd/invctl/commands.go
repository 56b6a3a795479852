package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-lotes/internal/bootstrap"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
	"github.com/jhoicas/inventario-lotes/pkg/metrics"
)

type env struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "invctl",
		Short:         "Operación del motor de inventario por lotes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			e.cfg = cfg
			e.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, File: cfg.Log.File})
			return nil
		},
	}
	root.AddCommand(
		newMigrateCmd(e),
		newReindexCmd(e),
		newRepriceCmd(e),
		newExpiryCheckCmd(e),
	)
	return root
}

// withContainer construye dependencias sin migrar al arrancar (migrate es un comando aparte).
func (e *env) withContainer(ctx context.Context, fn func(c *bootstrap.Container) error) error {
	cfg := *e.cfg
	cfg.DB.AutoMigrate = false
	c, err := bootstrap.New(ctx, &cfg, e.log)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func newMigrateCmd(e *env) *cobra.Command {
	var down int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica (o revierte con --down) las migraciones del esquema PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := e.cfg.DB.ConnectionString()
			if down > 0 {
				if err := postgres.MigrateDown(url, down); err != nil {
					return err
				}
				e.log.Info().Int("steps", down).Msg("migraciones revertidas")
				return nil
			}
			version, err := postgres.Migrate(url)
			if err != nil {
				return err
			}
			e.log.Info().Uint("version", version).Msg("esquema al día")
			return nil
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "revertir N migraciones")
	return cmd
}

func newReindexCmd(e *env) *cobra.Command {
	var productID string
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Reconstruye el cache de stock desde el ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				drifts, err := c.Reindex.Reindex(cmd.Context(), productID)
				if err != nil {
					return err
				}
				for _, d := range drifts {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tcache=%s\tledger=%s\n", d.ProductID, d.Location, d.Cached, d.Ledger)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "filas corregidas: %d\n", len(drifts))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "limitar a un producto")
	return cmd
}

func newRepriceCmd(e *env) *cobra.Command {
	var backfill bool
	cmd := &cobra.Command{
		Use:   "reprice",
		Short: "Recalcula descuentos automáticos de todos los lotes con stock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *bootstrap.Container) (err error) {
				defer metrics.ObserveJob(bootstrap.JobReprice, time.Now(), &err)
				if backfill {
					n, err := c.Batches.BackfillOriginalPrices(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "precios originales completados: %d\n", n)
				}
				n, err := c.Batches.RepriceAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "lotes recalculados: %d\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&backfill, "backfill", false, "completar antes el precio original faltante")
	return cmd
}

func newExpiryCheckCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "expiry-check",
		Short: "Emite las alertas de vencimiento pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				sent, err := c.ExpiryAlerts.Run(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "alertas enviadas: %d\n", sent)
				return nil
			})
		},
	}
}
