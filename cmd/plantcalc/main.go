package main

import (
	"os"

	"github.com/spf13/cobra"

	"Aquaquote/internal/calc/plant"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	catalogPath string
	dsn         string
}

func rootCmd() *cobra.Command {
	var g globalFlags
	rootCmd := &cobra.Command{
		Use:          "plantcalc",
		Short:        "Offline sizing and costing for STP/ETP plants",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "catalog file (.yaml or .xlsx)")
	rootCmd.PersistentFlags().StringVar(&g.dsn, "dsn", os.Getenv("CATALOG_DSN"), "Postgres catalog connection string")

	rootCmd.AddCommand(quoteCmd(&g))
	rootCmd.AddCommand(importCmd(&g))
	rootCmd.AddCommand(catalogCmd(&g))
	rootCmd.AddCommand(pushCatalogCmd(&g))
	return rootCmd
}

func quoteCmd(g *globalFlags) *cobra.Command {
	var spec plant.Spec
	var plantType string
	var table bool

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Size and price one plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec.Type = plant.ParseType(plantType)
			return runQuote(cmd.Context(), cmd.OutOrStdout(), *g, spec, table)
		},
	}
	f := cmd.Flags()
	f.StringVar(&plantType, "type", "STP", "plant type (STP or ETP)")
	f.Float64Var(&spec.Capacity, "capacity", 0, "design capacity in KLD")
	f.Float64Var(&spec.BOD, "bod", 0, "BOD in mg/L")
	f.Float64Var(&spec.COD, "cod", 0, "COD in mg/L")
	f.Float64Var(&spec.TSS, "tss", 0, "TSS in mg/L")
	f.Float64Var(&spec.PH, "ph", 0, "pH")
	f.Float64Var(&spec.OilGrease, "oil-grease", 0, "oil and grease in mg/L")
	f.Float64Var(&spec.Nitrogen, "nitrogen", 0, "nitrogen in mg/L")
	f.Float64Var(&spec.PeakFlow, "peak-flow", 0, "peak flow override in KLD")
	f.BoolVar(&table, "table", false, "print a table instead of JSON")
	cmd.MarkFlagRequired("capacity")
	return cmd
}

func importCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Quote every plant row of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), *g, args[0])
		},
	}
}

func catalogCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the active equipment catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd.Context(), cmd.OutOrStdout(), *g)
		},
	}
}

func pushCatalogCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push-catalog [file]",
		Short: "Store a catalog file (or the built-in one) in Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runPushCatalog(cmd.Context(), cmd.OutOrStdout(), g.dsn, path)
		},
	}
}
