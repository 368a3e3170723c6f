package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DrawRecord is one Express Entry invitation round as kept in the local
// collection. Field names mirror the upstream feed so the persisted file
// stays diffable against raw feed captures.
//
// Size and MinScore are pointers: the feed omits them on some historical
// rounds and an absent count must never collapse into zero, or it would
// poison every downstream aggregate.
type DrawRecord struct {
	Number      int    `json:"drawNumber"`
	Date        string `json:"drawDate"`
	DateTimeRaw string `json:"drawDateTime,omitempty"`
	Name        string `json:"drawName,omitempty"`
	Size        *int   `json:"drawSize,omitempty"`
	MinScore    *int   `json:"drawCRS,omitempty"`

	// Extended fields carried through unmodified, never interpreted here.
	Text2            string `json:"drawText2,omitempty"`
	CutOff           string `json:"drawCutOff,omitempty"`
	DistributionAsOn string `json:"drawDistributionAsOn,omitempty"`
	DD1              string `json:"dd1,omitempty"`
	DD2              string `json:"dd2,omitempty"`
	DD3              string `json:"dd3,omitempty"`
	DD4              string `json:"dd4,omitempty"`
	DD5              string `json:"dd5,omitempty"`
	DD6              string `json:"dd6,omitempty"`
	DD7              string `json:"dd7,omitempty"`
	DD8              string `json:"dd8,omitempty"`
	DD9              string `json:"dd9,omitempty"`
	DD10             string `json:"dd10,omitempty"`
	DD11             string `json:"dd11,omitempty"`
	DD12             string `json:"dd12,omitempty"`
	DD13             string `json:"dd13,omitempty"`
	DD14             string `json:"dd14,omitempty"`
	DD15             string `json:"dd15,omitempty"`
	DD16             string `json:"dd16,omitempty"`
	DD17             string `json:"dd17,omitempty"`
	DD18             string `json:"dd18,omitempty"`
}

// DateTime parses the calendar date of the draw. The feed emits drawDate as
// ISO YYYY-MM-DD; anything else returns nil.
func (r DrawRecord) DateTime() *time.Time {
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return nil
	}
	return &t
}

// DrawCollection is the persisted record set plus its metadata block. The
// updated_at timestamp belongs to the collection, not to any single record.
type DrawCollection struct {
	Rounds   []DrawRecord `json:"rounds"`
	Metadata Metadata     `json:"metadata"`
}

// Metadata carries collection-level bookkeeping, separate from draw data.
type Metadata struct {
	UpdatedAt string `json:"updated_at"`
}

// SyncResult reports the outcome of one synchronization pass.
type SyncResult struct {
	RunID      uuid.UUID `json:"run_id"`
	Changed    bool      `json:"changed"`
	PriorCount int       `json:"prior_count"`
	NewCount   int       `json:"new_count"`
}

// SortDraws orders records most recent first: date descending, ties broken
// by draw number descending. ISO dates compare correctly as strings.
func SortDraws(records []DrawRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Number > records[j].Number
	})
}
