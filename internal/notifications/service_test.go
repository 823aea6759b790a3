package notifications_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studioload/internal/config"
	"studioload/internal/forecast"
	"studioload/internal/notifications"
	"studioload/internal/risk"
	"studioload/internal/scale"
)

type captured struct {
	calls    int
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		c.calls++
		c.title = r.Header.Get("Title")
		c.tags = r.Header.Get("Tags")
		c.priority = r.Header.Get("Priority")
		c.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, c
}

func newConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(newConfig(""))
	findings := []risk.Finding{{TaskID: "T-1", Reasons: []string{"Overdue by 3 days"}}}
	if err := svc.NotifyAtRisk(context.Background(), findings); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "at risk",
			send: func(s notifications.Service) error {
				return s.NotifyAtRisk(context.Background(), []risk.Finding{
					{TaskID: "T-1", TaskName: "Brand film", Assignee: "Ana", Reasons: []string{"Overdue by 3 days"}},
					{TaskID: "T-2", Reasons: []string{"Due in 4 days, not yet in progress", "Over estimate by 30%"}},
				})
			},
			expectTitle:    "Studio - Tasks At Risk",
			expectMessage:  "2 tasks are at risk\n• Brand film (Ana): Overdue by 3 days\n• T-2: Due in 4 days, not yet in progress; Over estimate by 30%",
			expectTags:     "studioload,risk,warning",
			expectPriority: "high",
		},
		{
			name: "over capacity",
			send: func(s notifications.Service) error {
				return s.NotifyOverCapacity(context.Background(), forecast.Rollup{
					Days: 7, Utilization: 112.4, ActiveTasks: 9, Status: scale.StatusOver, RelativeNote: "Peak workload period",
				})
			},
			expectTitle:    "Studio - Over Capacity",
			expectMessage:  "Next 7 days at 112% of team capacity (9 active tasks)\nPeak workload period",
			expectTags:     "studioload,capacity,over",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("tracker unreachable"), "refresh")
			},
			expectTitle:    "Studio - Error",
			expectMessage:  "Error during refresh: tracker unreachable",
			expectTags:     "studioload,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "Studio - Test",
			expectMessage:  "Notification system test",
			expectTags:     "studioload,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, got := newCaptureServer(t)
			svc := notifications.NewService(newConfig(server.URL))
			if err := tc.send(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceTruncatesLongRiskLists(t *testing.T) {
	server, got := newCaptureServer(t)
	svc := notifications.NewService(newConfig(server.URL))

	findings := make([]risk.Finding, 8)
	for i := range findings {
		findings[i] = risk.Finding{TaskID: fmt.Sprintf("T-%d", i), Reasons: []string{"Overdue by 1 days"}}
	}
	if err := svc.NotifyAtRisk(context.Background(), findings); err != nil {
		t.Fatalf("NotifyAtRisk: %v", err)
	}
	if !strings.HasSuffix(got.body, "…and 3 more") {
		t.Fatalf("expected truncation suffix, got %q", got.body)
	}
}

func TestNtfyServiceIgnoresDisabledAlerts(t *testing.T) {
	server, got := newCaptureServer(t)
	cfg := newConfig(server.URL)
	cfg.Notifications.AtRisk = false
	cfg.Notifications.OverCapacity = false

	svc := notifications.NewService(cfg)
	if err := svc.NotifyAtRisk(context.Background(), []risk.Finding{{TaskID: "T-1", Reasons: []string{"x"}}}); err != nil {
		t.Fatalf("NotifyAtRisk: %v", err)
	}
	if err := svc.NotifyOverCapacity(context.Background(), forecast.Rollup{Days: 7}); err != nil {
		t.Fatalf("NotifyOverCapacity: %v", err)
	}
	if err := svc.NotifyAtRisk(context.Background(), nil); err != nil {
		t.Fatalf("NotifyAtRisk(nil): %v", err)
	}
	if got.calls != 0 {
		t.Fatalf("expected no ntfy calls, got %d", got.calls)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	err := notifications.NewService(newConfig(server.URL)).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
