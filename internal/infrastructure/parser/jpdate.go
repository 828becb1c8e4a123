package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/width"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/scanner"
)

var (
	yearExpr   = regexp.MustCompile(`(\d+)年`)
	monthExpr  = regexp.MustCompile(`(\d+)月`)
	dayExpr    = regexp.MustCompile(`(\d+)日`)
	hourExpr   = regexp.MustCompile(`(\d+)時`)
	minuteExpr = regexp.MustCompile(`(\d+)分`)
)

// DateNormalizer converts dates such as "2021年5月3日 9時15分" into
// domain.TimestampLayout. Unparseable input falls back to the current time.
type DateNormalizer struct {
	now    func() time.Time
	logger *slog.Logger
}

var _ scanner.DateNormalizer = (*DateNormalizer)(nil)

// NewDateNormalizer wires a logger and clock; now defaults to time.Now.
func NewDateNormalizer(logger *slog.Logger, now func() time.Time) *DateNormalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	return &DateNormalizer{now: now, logger: logger}
}

// Normalize returns the canonical timestamp, or the fallback.
func (n *DateNormalizer) Normalize(text string) string {
	out, _ := n.NormalizeDate(text)
	return out
}

// NormalizeDate is Normalize plus a flag that is false when the fallback was used.
func (n *DateNormalizer) NormalizeDate(text string) (string, bool) {
	t, ok := n.Parse(text)
	if !ok {
		n.logger.Warn("unable to parse date", "text", text)
		return n.Fallback(), false
	}
	return t.Format(domain.TimestampLayout), true
}

// Fallback formats the current wall-clock time.
func (n *DateNormalizer) Fallback() string {
	return n.now().Format(domain.TimestampLayout)
}

// Parse extracts year, month, day, hour and minute. It reports false if any
// unit is missing or the values do not form a real calendar time.
func (n *DateNormalizer) Parse(text string) (time.Time, bool) {
	text = width.Narrow.String(text)

	var parts [5]int
	for i, expr := range []*regexp.Regexp{yearExpr, monthExpr, dayExpr, hourExpr, minuteExpr} {
		m := expr.FindStringSubmatch(text)
		if m == nil {
			return time.Time{}, false
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = v
	}

	year, month, day, hour, minute := parts[0], parts[1], parts[2], parts[3], parts[4]
	if year < 1 || year > 9999 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalizes overflow (2月30日 -> 3月2日); reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day || t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, false
	}
	return t, true
}
