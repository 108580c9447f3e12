// Package export builds CSV downloads of form submissions.
//
// The file contract is fixed: every cell is double-quote-enclosed with
// embedded quotes doubled, the header row is "Submitted At" followed by the
// label of every non-structural field in field order, and list values are
// joined with "; ". encoding/csv is not used because it only quotes cells
// that need it, while this format quotes unconditionally.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// Filename returns the download name for a form's export, e.g.
// "contact-submissions-2026-08-31.csv".
func Filename(slug string, now time.Time) string {
	return fmt.Sprintf("%s-submissions-%s.csv", slug, now.UTC().Format("2006-01-02"))
}

// Write streams the CSV for the given submissions. When the field list is
// empty (form schema unavailable), columns degrade to the raw field ids
// found in the submissions so the data is still exported.
func Write(w io.Writer, fields []models.FormField, submissions []models.Submission) error {
	type column struct {
		key   string
		label string
	}

	var columns []column
	for _, f := range fields {
		if f.Type.Structural() {
			continue
		}
		columns = append(columns, column{key: f.ID, label: f.Label})
	}
	if len(columns) == 0 {
		for _, key := range collectKeys(submissions) {
			columns = append(columns, column{key: key, label: key})
		}
	}

	header := make([]string, 0, len(columns)+1)
	header = append(header, "Submitted At")
	for _, c := range columns {
		header = append(header, c.label)
	}
	if err := writeRow(w, header); err != nil {
		return err
	}

	for _, sub := range submissions {
		row := make([]string, 0, len(columns)+1)
		row = append(row, sub.SubmittedAt.UTC().Format(time.RFC3339))
		for _, c := range columns {
			row = append(row, formatValue(sub.Data[c.key]))
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cells []string) error {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

// formatValue renders a submission value as a single cell. Lists are joined
// "; " regardless of how JSON round-tripping typed their elements.
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, "; ")
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, "; ")
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func collectKeys(submissions []models.Submission) []string {
	seen := map[string]struct{}{}
	for _, sub := range submissions {
		for key := range sub.Data {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
