package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukerupert/compras/internal/exchange"
	"github.com/spf13/cobra"
)

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace history and waste reports with a backup document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer f.Close()

			// Validate before touching the database
			p, err := exchange.Import(f)
			if err != nil {
				return err
			}

			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			a.store.LoadData(p)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := a.writer.Flush(ctx); err != nil {
				return fmt.Errorf("save imported data: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d lists and %d waste reports\n",
				len(p.ShoppingHistory), len(p.WasteReports))
			return nil
		},
	}
}
