package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dukerupert/compras/internal/stats"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Width(18)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print shopping and waste statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), stats.Compute(a.store.State(), loc))
			return nil
		},
	}
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func renderReport(w io.Writer, r stats.Report) {
	effStyle := goodStyle
	if r.HighWaste {
		effStyle = badStyle
	}

	summary := strings.Join([]string{
		row("Itens comprados", fmt.Sprintf("%d de %d", r.CompletedItems, r.TotalItems)),
		row("Desperdícios", fmt.Sprintf("%d", r.WasteCount)),
		row("Valor perdido", money(r.TotalWasteValue)),
		labelStyle.Render("Eficiência") + effStyle.Render(fmt.Sprintf("%.0f%%", r.Efficiency)),
	}, "\n")

	fmt.Fprintln(w, titleStyle.Render("Compras Organizadas"))
	fmt.Fprintln(w, boxStyle.Render(summary))

	if r.WasteCount == 0 && r.TotalItems == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nenhum dado ainda."))
		return
	}

	fmt.Fprintln(w, headingStyle.Render("Por categoria"))
	for _, c := range r.ByCategory {
		if c.Purchased == 0 && c.Wasted == 0 {
			continue
		}
		fmt.Fprintf(w, "%s%s %s\n",
			labelStyle.Render(c.Category.Label()),
			valueStyle.Render(fmt.Sprintf("%d comprados, %d desperdiçados", c.Purchased, c.Wasted)),
			mutedStyle.Render(c.EfficiencyLabel+"%"),
		)
	}

	if r.WasteCount > 0 {
		fmt.Fprintln(w, headingStyle.Render("Motivos"))
		for _, reason := range r.ByReason {
			if reason.Count == 0 {
				continue
			}
			fmt.Fprintln(w, row(reason.Reason.Label(), fmt.Sprintf("%d (%s)", reason.Count, money(reason.Value))))
		}
	}

	if len(r.MonthlyTrend) > 0 {
		fmt.Fprintln(w, headingStyle.Render("Tendência mensal"))
		for _, m := range r.MonthlyTrend {
			fmt.Fprintln(w, row(m.Month, fmt.Sprintf("%d comprados, %d desperdiçados, %.0f%%", m.Purchased, m.Wasted, m.Efficiency)))
		}
	}

	if len(r.TopWastedItems) > 0 {
		fmt.Fprintln(w, headingStyle.Render("Mais desperdiçados"))
		fmt.Fprintln(w, strings.Join(r.TopWastedItems, ", "))
	}
	if r.HighWaste {
		fmt.Fprintln(w, badStyle.Render(fmt.Sprintf("Atenção: %d%% dos itens comprados foram desperdiçados.", r.WastePercentage)))
	}
}
