package ws

import (
	"encoding/json"
	"log"
	"time"

	"datajobs/internal/domain/posting"

	"github.com/google/uuid"
)

// BatchProgressEvent is emitted once per processed record.
type BatchProgressEvent struct {
	Type      string    `json:"type"`
	RunID     uuid.UUID `json:"run_id"`
	Done      int       `json:"done"`
	Total     int       `json:"total"`
	Outcome   string    `json:"outcome"`
	JobID     string    `json:"job_id,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// ProgressNotifier adapts the hub to the batch runner's notifier hook.
type ProgressNotifier struct {
	hub    *Hub
	logger *log.Logger
}

func NewProgressNotifier(hub *Hub, logger *log.Logger) *ProgressNotifier {
	return &ProgressNotifier{hub: hub, logger: logger}
}

func (n *ProgressNotifier) BatchProgress(runID uuid.UUID, done, total int, outcome posting.Outcome) {
	if n == nil || n.hub == nil {
		return
	}

	evt := BatchProgressEvent{
		Type:      "batch_progress",
		RunID:     runID,
		Done:      done,
		Total:     total,
		Outcome:   string(outcome.Kind),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if outcome.JobID != uuid.Nil {
		evt.JobID = outcome.JobID.String()
	}

	b, err := json.Marshal(evt)
	if err != nil {
		if n.logger != nil {
			n.logger.Printf("WS event marshal failed | err=%v", err)
		}
		return
	}
	n.hub.Broadcast(b)
}
