package transfer

import (
	"bufio"
	"io"
	"strings"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
)

// WriteCSV writes records one per line as type,date,values,reason,hours.
// Punch values are joined with a space.
func WriteCSV(w io.Writer, records []model.Record) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("type,date,values,reason,hours\n")
	for _, r := range records {
		fields := []string{
			r.Type,
			r.Date,
			strings.Join(r.Values, " "),
			r.Data,
			r.Hours,
		}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(csvEscape(f))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
