package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dukerupert/compras/internal/exchange"
	"github.com/spf13/cobra"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup document of the saved data",
		Long:  "Write a backup document of the saved data. Use -o - to write to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			data, err := exchange.Encode(exchange.Export(a.store.State(), now))
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if output == "" {
				output = exchange.Filename(now)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default compras-organizadas-backup-YYYY-MM-DD.json)")
	return cmd
}
