// Package timeband provides the fixed-grid time arithmetic used by the
// time-slot pipeline: bucketizing an interval into 10-minute spans, aligning
// timestamps to bucket boundaries, and rounding ranges outward for purge and
// merge operations.
package timeband

import (
	"iter"
	"time"
)

// BucketMinutes is the width of the activity grid.
const BucketMinutes = 10

// BucketDuration is BucketMinutes expressed as a time.Duration.
const BucketDuration = BucketMinutes * time.Minute

// Span is one contiguous piece of a bucketized interval. Duration is in
// seconds and never exceeds a full bucket.
type Span struct {
	StartedAt time.Time
	StoppedAt time.Time
	Duration  int
}

// Spans splits [start, end) into sequential spans no longer than one bucket;
// the final span may be shorter. The sequence is lazy, finite and restartable.
// An empty or inverted range yields nothing.
func Spans(start, end time.Time) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		cur := start.Truncate(time.Second)
		stop := end.Truncate(time.Second)
		for cur.Before(stop) {
			next := cur.Add(BucketDuration)
			if next.After(stop) {
				next = stop
			}
			s := Span{
				StartedAt: cur,
				StoppedAt: next,
				Duration:  int(next.Sub(cur) / time.Second),
			}
			if !yield(s) {
				return
			}
			cur = next
		}
	}
}

// CollectSpans materializes Spans into a slice.
func CollectSpans(start, end time.Time) []Span {
	var out []Span
	for s := range Spans(start, end) {
		out = append(out, s)
	}
	return out
}

// AlignToBucket rounds ts down to the nearest bucket boundary in UTC,
// zeroing sub-minute precision.
func AlignToBucket(ts time.Time) time.Time {
	t := ts.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%BucketMinutes, 0, 0, time.UTC)
}

// RoundRangeForPurge expands start down and end up to bucket boundaries. The
// returned end covers the full final bucket: an end anywhere inside a bucket
// (boundary included) maps to that bucket's upper edge plus one full bucket
// width, so [alignedStart, alignedEnd) never leaves a partial-bucket sliver.
func RoundRangeForPurge(start, end time.Time) (time.Time, time.Time) {
	return AlignToBucket(start), AlignToBucket(end).Add(BucketDuration)
}

// BucketKey formats the bucket-aligned start of ts as a UTC grouping key.
func BucketKey(ts time.Time) string {
	return AlignToBucket(ts).Format("2006-01-02 15:04:05")
}

// MinuteKey formats ts at minute precision, used to match incoming slots
// against already-persisted ones.
func MinuteKey(ts time.Time) string {
	return ts.UTC().Truncate(time.Minute).Format("2006-01-02 15:04")
}

// WeekRange returns the ISO week window [Monday 00:00, Sunday 23:59:59] in
// UTC containing ts. Timesheets are keyed by this range.
func WeekRange(ts time.Time) (time.Time, time.Time) {
	t := ts.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := day.AddDate(0, 0, 1-wd)
	sunday := monday.AddDate(0, 0, 7).Add(-time.Second)
	return monday, sunday
}

// DayRange returns the UTC day window [00:00:00, 23:59:59] containing ts.
func DayRange(ts time.Time) (time.Time, time.Time) {
	t := ts.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1).Add(-time.Second)
}
