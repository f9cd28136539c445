package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/wordindex/internal/aggregate"
)

// Format selects how reports are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (use: text, json)", s)
	}
}

// WordReport is the result of a count run.
type WordReport struct {
	Words   []aggregate.Stat `json:"words"`
	Sorted  bool             `json:"sorted"`
	Batches int              `json:"batches"`
	Files   int              `json:"files"`
	Tokens  uint64           `json:"tokens"`
	Elapsed time.Duration    `json:"-"`
}

type wordReportJSON struct {
	WordReport
	Total     int   `json:"total"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Words prints every word followed by "**Total:N" and the elapsed time.
// Sorted reports show "word count files"; unsorted ones show "word files".
func (w *Writer) Words(r WordReport, format Format) error {
	if format == FormatJSON {
		if r.Words == nil {
			r.Words = []aggregate.Stat{}
		}
		return w.json(wordReportJSON{
			WordReport: r,
			Total:      len(r.Words),
			ElapsedMS:  r.Elapsed.Milliseconds(),
		})
	}

	for _, s := range r.Words {
		files := strings.Join(s.Files, ",")
		if r.Sorted {
			_, _ = fmt.Fprintf(w.out, "%s %d %s\n", s.Word, s.Count, files)
		} else {
			_, _ = fmt.Fprintf(w.out, "%s [%s]\n", s.Word, files)
		}
	}
	_, _ = fmt.Fprintf(w.out, "**Total:%d\n", len(r.Words))
	_, _ = fmt.Fprintf(w.out, "Elapsed: %s (%d files, %d batches)\n",
		r.Elapsed.Round(time.Millisecond), r.Files, r.Batches)
	return nil
}

// SearchReport is the result of a search run.
type SearchReport struct {
	Query string   `json:"query"`
	Terms []string `json:"terms"`
	Files []string `json:"files"`
}

// Matches prints the files matching a query, one per line.
func (w *Writer) Matches(r SearchReport, format Format) error {
	if format == FormatJSON {
		if r.Files == nil {
			r.Files = []string{}
		}
		if r.Terms == nil {
			r.Terms = []string{}
		}
		return w.json(r)
	}

	if len(r.Files) == 0 {
		_, _ = fmt.Fprintf(w.out, "No files match %q\n", r.Query)
		return nil
	}
	for _, f := range r.Files {
		_, _ = fmt.Fprintln(w.out, f)
	}
	return nil
}

func (w *Writer) json(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
