package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studioload/internal/config"
	"studioload/internal/forecast"
	"studioload/internal/risk"
)

const (
	userAgent       = "studioload/0.1.0"
	maxListedTasks  = 5
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 2048
)

// Service defines the notification surface exposed to the daemon and CLI.
type Service interface {
	NotifyAtRisk(ctx context.Context, findings []risk.Finding) error
	NotifyOverCapacity(ctx context.Context, rollup forecast.Rollup) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		atRisk:       cfg.Notifications.AtRisk,
		overCapacity: cfg.Notifications.OverCapacity,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	atRisk       bool
	overCapacity bool
}

func (n *ntfyService) NotifyAtRisk(ctx context.Context, findings []risk.Finding) error {
	if !n.atRisk || len(findings) == 0 {
		return nil
	}

	var b strings.Builder
	if len(findings) == 1 {
		b.WriteString("1 task is at risk")
	} else {
		fmt.Fprintf(&b, "%d tasks are at risk", len(findings))
	}
	for i, f := range findings {
		if i == maxListedTasks {
			fmt.Fprintf(&b, "\n…and %d more", len(findings)-maxListedTasks)
			break
		}
		b.WriteString("\n• ")
		b.WriteString(findingLabel(f))
		b.WriteString(": ")
		b.WriteString(strings.Join(f.Reasons, "; "))
	}

	data := payload{
		title:    "Studio - Tasks At Risk",
		message:  b.String(),
		tags:     []string{"studioload", "risk", "warning"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyOverCapacity(ctx context.Context, rollup forecast.Rollup) error {
	if !n.overCapacity {
		return nil
	}
	message := fmt.Sprintf("Next %d days at %.0f%% of team capacity (%d active tasks)",
		rollup.Days, rollup.Utilization, rollup.ActiveTasks)
	if note := strings.TrimSpace(rollup.RelativeNote); note != "" {
		message += "\n" + note
	}
	data := payload{
		title:    "Studio - Over Capacity",
		message:  message,
		tags:     []string{"studioload", "capacity", "over"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Studio - Error",
		message:  builder.String(),
		tags:     []string{"studioload", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Studio - Test",
		message:  "Notification system test",
		tags:     []string{"studioload", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func findingLabel(f risk.Finding) string {
	label := f.TaskID
	if name := strings.TrimSpace(f.TaskName); name != "" {
		label = name
	}
	if assignee := strings.TrimSpace(f.Assignee); assignee != "" {
		label += " (" + assignee + ")"
	}
	return label
}

type noopService struct{}

func (noopService) NotifyAtRisk(context.Context, []risk.Finding) error       { return nil }
func (noopService) NotifyOverCapacity(context.Context, forecast.Rollup) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
