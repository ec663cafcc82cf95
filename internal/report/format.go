package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
)

// money formats a price metric with fixed precision, or "n/a" when undefined
func money(m model.Metric) string {
	if !m.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", m.Float())
}

func fixed2(m model.Metric) string {
	if !m.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Float())
}

func percent(m model.Metric) string {
	if !m.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", m.Float()*100)
}

// share formats a value already expressed in percent
func share(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 48

// Slug turns a query into a file-name-safe fragment
func Slug(query string) string {
	s := slugRegexp.ReplaceAllString(strings.ToLower(query), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		return "query"
	}
	return s
}

// ArtifactName builds "<slug>-<utc timestamp>-<id>.<ext>". id disambiguates
// concurrent runs of the same query within one second.
func ArtifactName(query string, at time.Time, id, ext string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s-%s.%s", Slug(query), at.UTC().Format("20060102-150405"), id, ext)
}
