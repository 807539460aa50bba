package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"go.uber.org/zap"
)

const callTimeout = 10 * time.Second

// Event is the JSON body posted to a trigger URL
type Event struct {
	Type       string    `json:"type"`
	RecordID   string    `json:"record_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// CallAsync posts event to triggerURL in the background.
// Failures are logged and never reach the caller.
func CallAsync(triggerURL string, event Event, httpClient httpclient.Client) {
	if triggerURL == "" {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	go call(triggerURL, event, httpClient)
}

func call(triggerURL string, event Event, httpClient httpclient.Client) {
	fields := []zap.Field{
		zap.String("url", triggerURL),
		zap.String("event", event.Type),
		zap.String("record_id", event.RecordID),
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode trigger event", append(fields, zap.Error(err))...)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, triggerURL, bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to build trigger request", append(fields, zap.Error(err))...)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to call trigger URL", append(fields, zap.Error(err))...)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Info("Trigger URL called successfully", append(fields, zap.Int("status_code", resp.StatusCode))...)
	} else {
		logger.Warn("Trigger URL returned non-success status", append(fields, zap.Int("status_code", resp.StatusCode))...)
	}
}
