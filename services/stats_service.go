package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/eedraws/draws-backend/models"
	"github.com/sirupsen/logrus"
)

// StatsService derives the summary-statistics and time-distribution
// documents from the persisted record set. All computations exclude absent
// values; they are never coerced to zero.
type StatsService struct {
	normalizer *TimeNormalizer
	logger     *logrus.Entry
}

// NewStatsService creates a statistics engine over the given normalizer.
func NewStatsService(normalizer *TimeNormalizer) *StatsService {
	return &StatsService{
		normalizer: normalizer,
		logger:     logrus.WithField("component", "StatsService"),
	}
}

// Summarize computes descriptive statistics over the size and score fields
// independently, plus the draw date range.
func (s *StatsService) Summarize(records []models.DrawRecord, updatedAt string) models.SummaryStats {
	var sizes, scores []int
	for _, record := range records {
		if record.Size != nil {
			sizes = append(sizes, *record.Size)
		}
		if record.MinScore != nil {
			scores = append(scores, *record.MinScore)
		}
	}

	earliest, latest := dateRange(records)

	return models.SummaryStats{
		Updated:  models.UpdatedInfo{Last: updatedAt},
		Draws:    models.DrawTotals{Total: len(records)},
		DrawDate: models.DateRange{Earliest: earliest, Latest: latest},
		Size:     summarizeField(sizes),
		Score:    summarizeField(scores),
	}
}

// TimeOfDayHistogram runs every record's raw timestamp through the
// normalizer, buckets the parses by hour, and derives the contiguous-range
// mode, the chart timeline, and the count-weighted average hour.
func (s *StatsService) TimeOfDayHistogram(records []models.DrawRecord) models.TimeStats {
	stats := models.TimeStats{
		AnalysisDate: time.Now().Format("2006-01-02 15:04:05"),
	}

	for _, record := range records {
		parsed := s.normalizer.Parse(record.DateTimeRaw)
		if parsed == nil {
			stats.UnparsedCount++
			continue
		}

		hour := parsed.Hour()
		stats.HourDistribution[hour]++

		stats.DrawTimes = append(stats.DrawTimes, models.DrawTime{
			DrawNumber:     record.Number,
			Hour:           hour,
			Time:           parsed.Format("15:04"),
			Date:           parsed.Format("2006-01-02"),
			DatetimeISO:    parsed.Format(time.RFC3339),
			DrawName:       record.Name,
			OriginalString: record.DateTimeRaw,
		})

		stats.DrawTimeline = append(stats.DrawTimeline, models.TimelinePoint{
			Date:       parsed.Format("2006-01-02"),
			Datetime:   parsed.Format(time.RFC3339),
			Time:       float64(hour) + float64(parsed.Minute())/60,
			Hour:       hour,
			Minute:     parsed.Minute(),
			DrawNumber: record.Number,
			DrawName:   record.Name,
			DrawSize:   record.Size,
			DrawCRS:    record.MinScore,
		})
	}

	// Chronological order for line-chart rendering.
	sort.SliceStable(stats.DrawTimeline, func(i, j int) bool {
		return stats.DrawTimeline[i].Datetime < stats.DrawTimeline[j].Datetime
	})

	stats.TotalDrawsWithTimes = len(stats.DrawTimes)
	stats.MostCommonHour = modeRange(stats.HourDistribution)

	if stats.TotalDrawsWithTimes > 0 {
		weighted := 0
		for hour, count := range stats.HourDistribution {
			weighted += hour * count
		}
		avg := round2(float64(weighted) / float64(stats.TotalDrawsWithTimes))
		stats.AverageHour = &avg
	}

	s.logger.WithFields(logrus.Fields{
		"parsed_count":   stats.TotalDrawsWithTimes,
		"unparsed_count": stats.UnparsedCount,
	}).Info("Time analysis completed")
	return stats
}

// summarizeField aggregates one optional numeric column. Nil results mean
// "not available": no values at all, a zero mean (coefficient of
// variation), or a single value (standard deviation needs two).
func summarizeField(values []int) models.FieldSummary {
	summary := models.FieldSummary{Count: len(values)}
	if len(values) == 0 {
		return summary
	}

	lowest, highest := values[0], values[0]
	sum := 0
	for _, v := range values {
		if v < lowest {
			lowest = v
		}
		if v > highest {
			highest = v
		}
		sum += v
	}

	mean := float64(sum) / float64(len(values))
	average := round2(mean)
	summary.Lowest = &lowest
	summary.Highest = &highest
	summary.Average = &average

	if len(values) >= 2 && mean != 0 {
		variance := 0.0
		for _, v := range values {
			diff := float64(v) - mean
			variance += diff * diff
		}
		stddev := math.Sqrt(variance / float64(len(values)-1))
		cv := round2(stddev / mean * 100)
		summary.CoefficientOfVariation = &cv
	}

	return summary
}

// modeRange reports the histogram mode as a contiguous hour range. All
// hours achieving the maximum count are grouped into maximal runs of
// consecutive hours; the longest run wins, ties broken by the earliest
// start. The range is half-open and rendered on a 12-hour clock, e.g.
// "3 PM - 5 PM" for hours {15, 16}. A range is reported instead of a single
// hour because draw times cluster across adjacent hours and a single-hour
// mode is misleading when counts tie across a block.
func modeRange(counts [24]int) *string {
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil
	}

	var maxHours []int
	for hour, c := range counts {
		if c == maxCount {
			maxHours = append(maxHours, hour)
		}
	}

	type hourRun struct{ start, end int }
	var runs []hourRun
	start, end := maxHours[0], maxHours[0]
	for _, hour := range maxHours[1:] {
		if hour == end+1 {
			end = hour
			continue
		}
		runs = append(runs, hourRun{start, end})
		start, end = hour, hour
	}
	runs = append(runs, hourRun{start, end})

	best := runs[0]
	for _, run := range runs[1:] {
		bestLen := best.end - best.start
		runLen := run.end - run.start
		if runLen > bestLen || (runLen == bestLen && run.start < best.start) {
			best = run
		}
	}

	label := fmt.Sprintf("%s - %s", formatHour12(best.start), formatHour12(best.end+1))
	return &label
}

// formatHour12 renders an hour index on a 12-hour clock; hour 24 wraps to
// 12 AM since range ends are exclusive.
func formatHour12(hour int) string {
	hour = hour % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d %s", hour12, suffix)
}

// dateRange finds the earliest and latest parseable draw dates.
func dateRange(records []models.DrawRecord) (*string, *string) {
	var earliest, latest string
	for _, record := range records {
		if record.DateTime() == nil {
			continue
		}
		if earliest == "" || record.Date < earliest {
			earliest = record.Date
		}
		if latest == "" || record.Date > latest {
			latest = record.Date
		}
	}
	if earliest == "" {
		return nil, nil
	}
	return &earliest, &latest
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
