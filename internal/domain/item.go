package domain

import "time"

// IST is the fixed UTC+05:30 offset used both for reconstructing scheduled
// instants from date + time-of-day rows and for the per-tick "now".
var IST = time.FixedZone("IST", 5*3600+30*60)

// Item is one schedulable tweet, rebuilt from the store on every tick and
// discarded when the tick ends. The published flag lives in the store only;
// an Item carries no mutable status of its own.
type Item struct {
	ID          string
	Text        string
	ScheduledAt time.Time
}

// Due reports whether the item should be published at now.
// The comparison is non-strict: an item scheduled exactly at now is due,
// and there is no upper bound on how far in the past ScheduledAt may be.
func (i Item) Due(now time.Time) bool {
	return !i.ScheduledAt.After(now)
}
