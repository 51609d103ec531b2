package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"qualitysite/internal/bootstrap"
	"qualitysite/internal/bootstrap/logging"
	"qualitysite/internal/errs"
	"qualitysite/internal/ports"
	ingestuc "qualitysite/internal/usecase/ingest"
)

// statusCmd renders the recent import-run audit rows.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent import runs",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := svcs.Report.RecentRuns(ctx, limit)
		if err != nil {
			return errs.Wrap(err, "list recent runs")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs)); err != nil {
			return errs.Wrap(err, "write status output")
		}
		return nil
	}),
}

func renderRuns(runs []ports.ImportRunRecord) string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Import runs"))
	b.WriteString("\n")

	if len(runs) == 0 {
		b.WriteString(dimStyle.Render("no runs recorded yet"))
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"%-19s %-6s %-8s %6s %8s %8s %8s %8s %9s %6s",
		"STARTED", "FEED", "STATUS", "ROWS", "CREATED", "UPDATED", "EXISTING", "PENDING", "MALFORMED", "ERRORS",
	)))
	b.WriteString("\n")

	for _, run := range runs {
		line := fmt.Sprintf(
			"%-19s %-6s %-8s %6d %8d %8d %8d %8d %9d %6d",
			shortTimestamp(run.StartedAt), run.Feed, run.Status,
			run.TotalRows, run.Created, run.Updated, run.Existing,
			run.Pending, run.Malformed, run.Errors,
		)
		switch run.Status {
		case ingestuc.RunStatusOK:
			b.WriteString(okStyle.Render(line))
		case ingestuc.RunStatusFailed:
			b.WriteString(failStyle.Render(line))
		default:
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// shortTimestamp trims an RFC3339 stamp down to "2006-01-02 15:04:05".
func shortTimestamp(stamp string) string {
	s := strings.Replace(stamp, "T", " ", 1)
	if i := strings.IndexAny(s, "Z+"); i > 0 {
		s = s[:i]
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Int("limit", 20, "How many runs to show")
}
