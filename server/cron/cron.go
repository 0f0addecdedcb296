package cron

import (
	"time"

	"github.com/go-co-op/gocron"
)

// NewScheduler returns a scheduler in the given time zone,
// falling back to UTC when the zone can't be loaded.
func NewScheduler(timeZoneArg string) *gocron.Scheduler {
	timeZone, err := time.LoadLocation(timeZoneArg)
	if err != nil {
		timeZone = time.UTC
	}

	scheduler := gocron.NewScheduler(timeZone)
	scheduler.TagsUnique()

	return scheduler
}
