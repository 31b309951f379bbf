package events

// Event types consumed by downstream schedulers and the forecasting feed.
const (
	EventCycleCompleted   = "refresh.cycle.completed"
	EventSourceRegistered = "source.registered"
)

// CycleCompletedPayload summarizes one refresh cycle for consumers.
type CycleCompletedPayload struct {
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Units      int    `json:"units"`
	Saved      int    `json:"saved"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p CycleCompletedPayload) ToMap() map[string]any {
	return map[string]any{
		"started_at":  p.StartedAt,
		"finished_at": p.FinishedAt,
		"units":       p.Units,
		"saved":       p.Saved,
		"skipped":     p.Skipped,
		"failed":      p.Failed,
	}
}
