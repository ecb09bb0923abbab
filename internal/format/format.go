// Package format holds the formatting contracts shared by the live preview
// and the export pipeline. Both must call these helpers so they never diverge.
package format

import (
	"fmt"
	"iter"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-builder/internal/model"
)

const Present = "Present"

var monthAbbrev = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatPeriod renders a year-month as "Mar 2021". Months outside 1..12 render as "".
func FormatPeriod(year, month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return fmt.Sprintf("%s %d", monthAbbrev[month-1], year)
}

// Period renders p, or "" when p is unset.
func Period(p model.Period) string {
	if p.IsZero() {
		return ""
	}
	return FormatPeriod(p.Year, p.Month)
}

// FormatEnd renders an Experience end period; an unset end is "Present".
func FormatEnd(p model.Period) string {
	if p.IsZero() {
		return Present
	}
	return Period(p)
}

// FormatRange joins start and end as "Mar 2021 - Present". When openEnded is
// false an unset end is omitted instead of reading "Present".
func FormatRange(start, end model.Period, openEnded bool) string {
	from := Period(start)
	to := Period(end)
	if openEnded {
		to = FormatEnd(end)
	}
	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return to
	case to == "":
		return from
	}
	return from + " - " + to
}

// Bullets yields one trimmed, non-blank line per bullet, in order. The
// sequence is lazy and can be ranged over any number of times.
func Bullets(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for rest != "" {
			line, tail, found := strings.Cut(rest, "\n")
			rest = tail
			if line = strings.TrimSpace(line); line != "" {
				if !yield(line) {
					return
				}
			}
			if !found {
				return
			}
		}
	}
}

// SplitBullets collects Bullets(text). It never returns nil.
func SplitBullets(text string) []string {
	out := slices.Collect(Bullets(text))
	if out == nil {
		return []string{}
	}
	return out
}

// URLLabel returns a short host label (eTLD+1 without "www.") for a link,
// or the raw value when it cannot be parsed.
func URLLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
