package store

import (
	"time"

	"github.com/mikey/email-triage/internal/core"
)

// hourBucketFormat labels hourly dashboard buckets
const hourBucketFormat = "2006-01-02 15:00"

// hourlyBuckets expands a sparse hour→count map into the 24 consecutive
// buckets starting at since, oldest first.
func hourlyBuckets(since time.Time, counts map[string]int) []core.HourlyCount {
	start := since.UTC().Truncate(time.Hour)
	hourly := make([]core.HourlyCount, 0, 24)
	for i := 0; i < 24; i++ {
		hour := start.Add(time.Duration(i) * time.Hour).Format(hourBucketFormat)
		hourly = append(hourly, core.HourlyCount{Hour: hour, Count: counts[hour]})
	}
	return hourly
}
