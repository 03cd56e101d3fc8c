package job

import "time"

type CrawlStatus string

const (
	CrawlSuccess CrawlStatus = "SUCCESS"
	CrawlFailed  CrawlStatus = "FAILED"
	CrawlPartial CrawlStatus = "PARTIAL"
)

// CrawlLog records the outcome of crawling one company's career pages.
type CrawlLog struct {
	ID           int64
	CompanyID    int64
	Target       string
	Status       CrawlStatus
	JobsFound    int
	JobsCreated  int
	JobsSkipped  int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Finish derives the status from the counters: any error with nothing
// created is a failure, an error after some progress is partial.
func (l CrawlLog) Finish(err error, now time.Time) CrawlLog {
	l.FinishedAt = now
	switch {
	case err == nil:
		l.Status = CrawlSuccess
	case l.JobsCreated > 0 || l.JobsSkipped > 0:
		l.Status = CrawlPartial
		l.ErrorMessage = err.Error()
	default:
		l.Status = CrawlFailed
		l.ErrorMessage = err.Error()
	}
	return l
}
