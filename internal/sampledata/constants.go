package sampledata

import "time"

// Run defaults applied by normalize.
const (
	DefaultNumPosts     = 5000
	DefaultSubmissions  = 8
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
	DefaultWaitTimeout  = 2 * time.Minute
)

// Share of generated rows that are not posted and get filtered out.
const unpostedPercent = 15

const (
	percentageMultiplier = 100
	maxRandom            = 1_000_000
	minutesPerMonth      = 30 * 24 * 60
	maxFirstCommentDelay = 240 // minutes
	maxScheduleWeeks     = 5
)
