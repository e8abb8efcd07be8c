package ingest

import (
	"encoding/json"
	"log/slog"
	"time"

	"clipseek/internal/config"
	"clipseek/internal/youtube"
)

// ResultEvent summarizes an ingestion run for downstream consumers.
type ResultEvent struct {
	Reference  string `json:"reference"`
	Kind       string `json:"kind"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
	FinishedAt int64  `json:"finished_at"`
}

type runOutcome struct {
	indexed int
	skipped int
	err     string
}

// publishResult emits the run outcome to NSQ. The publisher is optional;
// without one the run outcome is only logged.
func (s *Service) publishResult(reference string, kind youtube.RefKind, outcome runOutcome) {
	if s.pub == nil {
		return
	}

	event := ResultEvent{
		Reference:  reference,
		Kind:       string(kind),
		Indexed:    outcome.indexed,
		Skipped:    outcome.skipped,
		Error:      outcome.err,
		FinishedAt: time.Now().Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal result event", "error", err)
		return
	}
	if err := s.pub.Publish(config.TopicIndexResult, body); err != nil {
		slog.Error("failed to publish result event", "error", err, "topic", config.TopicIndexResult)
	}
}
