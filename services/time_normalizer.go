package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eedraws/draws-backend/shared"
	"github.com/sirupsen/logrus"
)

// TimeNormalizer converts the free-form drawDateTime strings into structured
// timestamps. Upstream accumulated years of inconsistent formats: duplicated
// ISO fragments, a missing space after "at", missing commas, AM/PM suffixes
// on values already in 24-hour form, double spaces. The normalizer applies a
// fixed ordered sequence of textual repairs, then a fixed ordered template
// cascade, then a last-resort reconstruction. Cheap unambiguous formats come
// first and speculative reconstruction last: a wrong silent parse is worse
// than no parse at all.
type TimeNormalizer struct {
	logger  *logrus.Entry
	metrics *shared.ServiceMetrics
}

// NewTimeNormalizer creates a normalizer. The logger is injected so tests
// can capture or silence diagnostics; nil falls back to the standard logger.
func NewTimeNormalizer(logger *logrus.Entry) *TimeNormalizer {
	if logger == nil {
		logger = logrus.WithField("component", "TimeNormalizer")
	}
	return &TimeNormalizer{
		logger:  logger,
		metrics: shared.NewServiceMetrics("time-normalizer"),
	}
}

var (
	isoFragmentRegex   = regexp.MustCompile(`(20\d{2}-\d{2}-\d{2})\s+(\d{1,2}:\d{2}:\d{2})`)
	meridiemRegex      = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}:\d{2})\s*(AM|PM)`)
	multipleSpaceRegex = regexp.MustCompile(`  +`)
	commaBeforeAtRegex = regexp.MustCompile(`,\s*at\s+`)
	dayYearRegex       = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2})\s+(\d{4})`)
	monthDayYearRegex  = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})`)
	clockRegex         = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`)
)

// timestampTemplates is the ordered cascade attempted after repair. The
// first successful match wins.
var timestampTemplates = []string{
	"January 2, 2006 at 15:04:05 UTC",
	"January 2, 2006 15:04:05 UTC",
	"January 2, 2006 3:04:05 PM UTC",
	"January 2,2006 at 15:04:05 UTC",
	"January 2,2006 15:04:05 UTC",
	"January 2, 2006, 15:04:05 UTC",
	"January 2, 2006, at 15:04:05 UTC",
	"January 2 2006 15:04:05 UTC",
	"2006-01-02 15:04:05 UTC",
	"January 2, 2006 15:04:05",
	"January 2, 2006 at 15:04:05",
}

// repairs is the fixed ordered sequence of textual repairs. Each is a pure
// string transformation, a no-op when its pattern does not occur, and
// operates on the output of the previous one.
var repairs = []func(string) string{
	insertSpaceAfterAt,
	collapseDoubleSpaces,
	stripRedundantMeridiem,
	dropCommaBeforeAt,
	insertDayYearComma,
}

// Parse converts one raw timestamp string into a structured timestamp.
// It never fails: nil means no timestamp could be extracted, logged at
// debug level with the original string for diagnosis. Parse is a pure
// function of its input.
func (n *TimeNormalizer) Parse(raw string) *time.Time {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		n.metrics.RecordRequest(false)
		return nil
	}

	// A duplicated date fragment ("January 23, 2025 2025-01-23 15:30:04 UTC")
	// carries an unambiguous embedded ISO timestamp; parse that directly and
	// skip every other step on success.
	if strings.Count(cleaned, "202") > 1 {
		if match := isoFragmentRegex.FindStringSubmatch(cleaned); match != nil {
			if parsed, err := time.Parse("2006-01-02 15:04:05 UTC", match[1]+" "+match[2]+" UTC"); err == nil {
				n.recordSuccess("iso_fragment")
				return &parsed
			}
		}
	}

	for _, repair := range repairs {
		cleaned = repair(cleaned)
	}

	for _, template := range timestampTemplates {
		if parsed, err := time.Parse(template, cleaned); err == nil {
			n.recordSuccess("template")
			return &parsed
		}
	}

	if parsed := reconstructTimestamp(cleaned); parsed != nil {
		n.recordSuccess("reconstruction")
		return parsed
	}

	n.metrics.RecordRequest(false)
	n.logger.WithField("raw_value", raw).Debug("Could not parse draw timestamp")
	return nil
}

// Metrics exposes parse success/failure counters.
func (n *TimeNormalizer) Metrics() *shared.ServiceMetrics {
	return n.metrics
}

func (n *TimeNormalizer) recordSuccess(stage string) {
	n.metrics.RecordRequest(true)
	n.metrics.IncrementCounter("parsed_via_" + stage)
}

// insertSpaceAfterAt repairs "May 31, 2024 at12:48:30 UTC".
func insertSpaceAfterAt(s string) string {
	if strings.Contains(s, "at") && !strings.Contains(s, "at ") {
		return strings.ReplaceAll(s, "at", "at ")
	}
	return s
}

// collapseDoubleSpaces normalizes runs of spaces to a single space.
func collapseDoubleSpaces(s string) string {
	return multipleSpaceRegex.ReplaceAllString(s, " ")
}

// stripRedundantMeridiem removes an AM/PM suffix from a time that is
// already unambiguously 24-hour ("15:48:39 AM"); the suffix is upstream
// noise. Hours below 13 keep their suffix, it carries real information.
func stripRedundantMeridiem(s string) string {
	match := meridiemRegex.FindStringSubmatch(s)
	if match == nil {
		return s
	}
	hour, err := strconv.Atoi(strings.SplitN(match[1], ":", 2)[0])
	if err != nil || hour < 13 {
		return s
	}
	s = strings.ReplaceAll(s, " "+match[2], "")
	return strings.ReplaceAll(s, match[2], "")
}

// dropCommaBeforeAt repairs "March 01, 2023, at 17:24:39 UTC" so the token
// sequence around "at" is uniform.
func dropCommaBeforeAt(s string) string {
	return commaBeforeAtRegex.ReplaceAllString(s, " at ")
}

// insertDayYearComma repairs "February 02 2022 at 14:16:27 UTC" by adding
// the missing comma between day and year. Applies only when the string has
// no comma at all, matching the upstream corruption pattern.
func insertDayYearComma(s string) string {
	if strings.Contains(s, ",") {
		return s
	}
	match := dayYearRegex.FindStringSubmatch(s)
	if match == nil {
		return s
	}
	repaired := fmt.Sprintf("%s %s, %s", match[1], match[2], match[3])
	return strings.Replace(s, match[0], repaired, 1)
}

// reconstructTimestamp is the last resort: independently locate a
// month/day/year triple and an HH:MM:SS triple anywhere in the string and
// combine them. An invalid month name still fails the final parse, so this
// cannot invent a timestamp from arbitrary text.
func reconstructTimestamp(s string) *time.Time {
	dateMatch := monthDayYearRegex.FindStringSubmatch(s)
	if dateMatch == nil {
		return nil
	}
	clock := clockRegex.FindString(s)
	if clock == "" {
		return nil
	}

	combined := fmt.Sprintf("%s %s %s %s", dateMatch[1], dateMatch[2], dateMatch[3], clock)
	parsed, err := time.Parse("January 2 2006 15:04:05", combined)
	if err != nil {
		return nil
	}
	return &parsed
}
