package filter

import "time"

// AgeLimit expresses the archiving age threshold in days. Zero means no
// filter at all; every item is counted regardless of creation time.
type AgeLimit struct {
	Days int
}

// Active reports whether a date restriction should be applied.
func (a AgeLimit) Active() bool {
	return a.Days > 0
}

// Cutoff returns the newest creation time still eligible for archiving.
// Items created on or before the cutoff are counted (boundary inclusive).
func (a AgeLimit) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -a.Days)
}
