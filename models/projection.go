package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ProjectRound narrows one raw feed record to the canonical DrawRecord shape.
// Only recognized fields are copied; unknown upstream fields are silently
// ignored so new feed columns never break ingestion. Missing recognized
// fields stay absent (nil pointer / empty string), never a zero default.
func ProjectRound(raw map[string]any) DrawRecord {
	record := DrawRecord{
		Number:           intValue(raw["drawNumber"]),
		Date:             stringValue(raw["drawDate"]),
		DateTimeRaw:      stringValue(raw["drawDateTime"]),
		Name:             stringValue(raw["drawName"]),
		Size:             optionalInt(raw["drawSize"]),
		MinScore:         optionalInt(raw["drawCRS"]),
		Text2:            stringValue(raw["drawText2"]),
		CutOff:           stringValue(raw["drawCutOff"]),
		DistributionAsOn: stringValue(raw["drawDistributionAsOn"]),
	}

	dd := []*string{
		&record.DD1, &record.DD2, &record.DD3, &record.DD4, &record.DD5,
		&record.DD6, &record.DD7, &record.DD8, &record.DD9, &record.DD10,
		&record.DD11, &record.DD12, &record.DD13, &record.DD14, &record.DD15,
		&record.DD16, &record.DD17, &record.DD18,
	}
	for i, field := range dd {
		*field = stringValue(raw[fmt.Sprintf("dd%d", i+1)])
	}

	return record
}

// ProjectRounds projects a whole fetched batch.
func ProjectRounds(rounds []map[string]any) []DrawRecord {
	records := make([]DrawRecord, 0, len(rounds))
	for _, raw := range rounds {
		records = append(records, ProjectRound(raw))
	}
	return records
}

// stringValue renders a raw feed value as text. Numbers are formatted rather
// than dropped since extended fields are carried through verbatim.
func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	default:
		return ""
	}
}

// optionalInt parses a numeric feed value that may arrive as a JSON number
// or as formatted text with thousands separators ("5,000"). Unparseable or
// missing values stay absent.
func optionalInt(v any) *int {
	switch value := v.(type) {
	case float64:
		n := int(value)
		return &n
	case int:
		n := value
		return &n
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
		if cleaned == "" {
			return nil
		}
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// intValue is optionalInt for required identifiers; absence becomes zero.
func intValue(v any) int {
	if n := optionalInt(v); n != nil {
		return *n
	}
	return 0
}
