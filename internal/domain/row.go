package domain

// SkipReason explains why a source row was excluded from the candidate set.
// Skipping is policy, not an error: rows with absent or unresolvable fields
// are dropped with a warning and reconsidered on the next tick.
type SkipReason string

const (
	SkipMissingText     SkipReason = "missing_text"
	SkipMissingSchedule SkipReason = "missing_schedule"
	SkipBadTimeOfDay    SkipReason = "bad_time_of_day"
)

// RowResult is the outcome of mapping one store row: either a usable Item or
// a Skip reason, never both.
type RowResult struct {
	Item Item
	Skip SkipReason
}

// Skipped reports whether the row was excluded from the candidate set.
func (r RowResult) Skipped() bool {
	return r.Skip != ""
}

// OkRow wraps a usable item.
func OkRow(item Item) RowResult {
	return RowResult{Item: item}
}

// SkippedRow marks a row as excluded, keeping the id for logging.
func SkippedRow(id string, reason SkipReason) RowResult {
	return RowResult{Item: Item{ID: id}, Skip: reason}
}
