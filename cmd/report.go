package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/balance"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

var (
	reportWeek   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a weekly balance report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportWeek, "week", "", "Any day of the week to report (YYYY-MM-DD); defaults to this week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type weekReport struct {
	Week     string      `json:"week"`
	Expected string      `json:"expected"`
	Worked   string      `json:"worked"`
	Days     []reportDay `json:"days"`
}

type reportDay struct {
	Date    string `json:"date"`
	WorkDay bool   `json:"work_day"`
	Source  string `json:"source"`
	Total   string `json:"total"`
	Balance string `json:"balance"`
	Overall string `json:"overall"`
}

func runReport(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if reportWeek != "" {
		d, err := timecalc.ParseDate(reportWeek)
		if err != nil {
			return userError(fmt.Errorf("invalid --week value: %w", err))
		}
		day = d
	}
	switch reportFormat {
	case "md", "csv", "json":
	default:
		return userError(fmt.Errorf("unknown format %q (want md, csv or json)", reportFormat))
	}

	week, err := state.calc.Week(cmd.Context(), day)
	if err != nil {
		return storageError(err)
	}
	expected, err := state.calc.Expected(week[0].Date, week[len(week)-1].Date)
	if err != nil {
		return storageError(err)
	}
	rep := buildWeekReport(week, expected)

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "csv":
		fmt.Fprintln(out, "date,work_day,source,total,balance,overall")
		for _, d := range rep.Days {
			fmt.Fprintf(out, "%s,%t,%s,%s,%s,%s\n", d.Date, d.WorkDay, d.Source, d.Total, d.Balance, d.Overall)
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return storageError(fmt.Errorf("error encoding JSON: %w", err))
		}
	default:
		printWeekMarkdown(out, rep)
	}
	return nil
}

func buildWeekReport(week []balance.DayReport, expected string) weekReport {
	rep := weekReport{
		Week:     timecalc.ISOWeekLabel(week[0].Date),
		Expected: expected,
	}
	var worked timemath.Duration
	for _, d := range week {
		worked += d.Total
		rep.Days = append(rep.Days, reportDay{
			Date:    timecalc.DateStr(d.Date),
			WorkDay: d.WorkDay,
			Source:  d.Source.String(),
			Total:   d.Total.String(),
			Balance: d.Balance.String(),
			Overall: d.Overall,
		})
	}
	rep.Worked = worked.String()
	return rep
}

func printWeekMarkdown(out io.Writer, rep weekReport) {
	fmt.Fprintln(out, headerStyle.Render("Week "+rep.Week))
	fmt.Fprintln(out, "------------------------------------------------")
	fmt.Fprintf(out, "%-16s%-8s%-10s%s\n", "Day", "Worked", "Balance", "Overall")
	for _, d := range rep.Days {
		t, _ := timecalc.ParseDate(d.Date)
		label := t.Format("Mon 2006-01-02")
		if !d.WorkDay {
			label = mutedStyle.Render(label)
		}
		note := ""
		if d.Source == "waiver" {
			note = mutedStyle.Render(" (waived)")
		}
		fmt.Fprintf(out, "%s%s%s%s%s\n",
			padRight(label, 16), padRight(d.Total, 8), padRight(colorBalance(d.Balance), 10), colorBalance(d.Overall), note)
	}
	fmt.Fprintln(out, "------------------------------------------------")
	fmt.Fprintf(out, "%-16s%s / %s expected\n", "Total", rep.Worked, rep.Expected)
}

// padRight pads s with spaces to width visible cells; ANSI styling is not
// counted.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
