package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/eedraws/draws-backend/models"
)

// ReportService formats the latest draw into a notification subject and
// body: draw identity, invitation count, minimum CRS, how long ago the draw
// happened, and the gap to the previous draw.
type ReportService struct {
	now func() time.Time
}

// NewReportService creates a report builder using the wall clock.
func NewReportService() *ReportService {
	return &ReportService{now: time.Now}
}

// BuildDrawNotification renders the subject and plain-text body for the
// given latest draw; previous may be nil.
func (s *ReportService) BuildDrawNotification(latest models.DrawRecord, previous *models.DrawRecord) (string, string) {
	subject := fmt.Sprintf("New Express Entry Draw #%d - %s", latest.Number, latest.Name)

	lines := []string{
		fmt.Sprintf("Draw Date: %s", latest.DateTimeRaw),
		fmt.Sprintf("Type: %s", latest.Name),
		fmt.Sprintf("Invitations: %s", formatOptionalCount(latest.Size)),
		fmt.Sprintf("Minimum CRS: %s", formatOptionalCount(latest.MinScore)),
	}

	if drawDate := latest.DateTime(); drawDate != nil {
		lines = append(lines, fmt.Sprintf("This draw happened: %s", s.describeRecency(*drawDate)))

		if previous != nil {
			if previousDate := previous.DateTime(); previousDate != nil {
				daysBetween := int(drawDate.Sub(*previousDate).Hours() / 24)
				lines = append(lines, fmt.Sprintf("Days since previous draw: %d", daysBetween))
			}
		}
	}

	return subject, strings.Join(lines, "\n")
}

// describeRecency renders how long ago a draw date was, in whole days.
func (s *ReportService) describeRecency(drawDate time.Time) string {
	today := s.now().UTC().Truncate(24 * time.Hour)
	days := int(today.Sub(drawDate.Truncate(24*time.Hour)).Hours() / 24)

	switch {
	case days <= 0:
		return "TODAY!"
	case days == 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatOptionalCount(value *int) string {
	if value == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *value)
}
