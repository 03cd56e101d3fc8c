package ws

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

const EventJobsUpdated = "jobs_updated"

type JobsUpdatedEvent struct {
	Type      string  `json:"type"`
	JobIDs    []int64 `json:"job_ids"`
	Count     int     `json:"count"`
	Timestamp string  `json:"timestamp"`
}

// NotifyJobsUpdated tells subscribers that new postings were published so
// they can refresh their listings.
func (h *Hub) NotifyJobsUpdated(jobIDs []int64) {
	if h == nil || len(jobIDs) == 0 {
		return
	}

	evt := JobsUpdatedEvent{
		Type:      EventJobsUpdated,
		JobIDs:    append([]int64(nil), jobIDs...),
		Count:     len(jobIDs),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("encode ws event failed", zap.Error(err))
		return
	}

	h.Broadcast(b)
}
