package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
)

// OpsNotifier implements notification.Notifier with a Slack incoming webhook.
// Without a webhook URL alerts are only logged.
type OpsNotifier struct {
	logger          *logger.Logger
	slackWebhookURL string
	slackChannel    string
	httpClient      *http.Client
}

// NewOpsNotifier creates a new operator notifier
func NewOpsNotifier(log *logger.Logger, slackWebhookURL, slackChannel string) notification.Notifier {
	return &OpsNotifier{
		logger:          log,
		slackWebhookURL: slackWebhookURL,
		slackChannel:    slackChannel,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify logs the alert and forwards it to Slack when configured
func (s *OpsNotifier) Notify(ctx context.Context, a notification.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	fields := map[string]interface{}{
		"alert_type": a.Type,
		"priority":   a.Priority,
	}
	for k, v := range a.Fields {
		fields[k] = v
	}
	s.logger.WithFields(fields).Warn(a.Title)

	if s.slackWebhookURL == "" {
		return nil
	}
	return s.sendSlack(ctx, a)
}

func (s *OpsNotifier) sendSlack(ctx context.Context, a notification.Alert) error {
	payload, err := json.Marshal(s.buildSlackMessage(a))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.slackWebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, string(body))
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_type": a.Type,
	}).Info("Slack alert sent")

	return nil
}

func (s *OpsNotifier) buildSlackMessage(a notification.Alert) map[string]interface{} {
	color := "#36a64f"
	switch a.Priority {
	case notification.PriorityCritical:
		color = "#ff0000"
	case notification.PriorityHigh:
		color = "#ff8c00"
	case notification.PriorityMedium:
		color = "#ffcc00"
	}

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, map[string]interface{}{
			"title": k,
			"value": a.Fields[k],
			"short": true,
		})
	}

	msg := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color":  color,
				"title":  fmt.Sprintf(":rotating_light: %s", a.Title),
				"text":   a.Message,
				"fields": fields,
				"footer": "Talk-To-My-Lawyer",
				"ts":     a.CreatedAt.Unix(),
			},
		},
	}
	if s.slackChannel != "" {
		msg["channel"] = s.slackChannel
	}
	return msg
}
