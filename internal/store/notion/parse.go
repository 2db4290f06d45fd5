package notion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/domain"
)

// buildRow decides whether raw row fields form a publishable item.
//
// Two scheduling shapes are supported. When a time-of-day string is present,
// the instant is the calendar day of start plus HH:MM at the fixed IST offset.
// When it is absent, start is taken directly as the absolute instant with no
// forced offset.
func buildRow(id, text string, start time.Time, hasStart bool, timeOfDay string) domain.RowResult {
	if text == "" {
		return domain.SkippedRow(id, domain.SkipMissingText)
	}
	if !hasStart || start.IsZero() {
		return domain.SkippedRow(id, domain.SkipMissingSchedule)
	}

	scheduledAt := start
	if timeOfDay != "" {
		at, err := combineDayTime(start, timeOfDay)
		if err != nil {
			return domain.SkippedRow(id, domain.SkipBadTimeOfDay)
		}
		scheduledAt = at
	}

	return domain.OkRow(domain.Item{ID: id, Text: text, ScheduledAt: scheduledAt})
}

// combineDayTime builds an absolute instant from the calendar day of day and
// an "HH:MM" time-of-day at UTC+05:30. Seconds are always zero.
func combineDayTime(day time.Time, hhmm string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("time %q: want HH:MM", hhmm)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: bad hour: %w", hhmm, err)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: bad minute: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time %q: out of range", hhmm)
	}

	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, domain.IST), nil
}

// richTextValue extracts the concatenated plain text of a rich-text property.
// Title properties are accepted too, for databases that keep the tweet in the
// title column.
func richTextValue(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		return joinRichText(p.RichText)
	case *notionapi.TitleProperty:
		return joinRichText(p.Title)
	default:
		return ""
	}
}

func joinRichText(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, r := range parts {
		if r.Text != nil {
			sb.WriteString(r.Text.Content)
			continue
		}
		sb.WriteString(r.PlainText)
	}
	return strings.TrimSpace(sb.String())
}

// dateStart extracts the start of a date property, reporting whether one is set.
func dateStart(prop notionapi.Property) (time.Time, bool) {
	p, ok := prop.(*notionapi.DateProperty)
	if !ok || p.Date == nil || p.Date.Start == nil {
		return time.Time{}, false
	}
	return time.Time(*p.Date.Start), true
}
