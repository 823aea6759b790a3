package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"studioload/internal/capacity"
	"studioload/internal/logging"
)

// export holds the records that decoded cleanly plus an issue for each one
// that did not.
type export struct {
	Tasks  []taskRecord
	Team   []memberRecord
	Issues []DecodeIssue
}

// jsonExport and yamlExport are the wire shapes. Records stay raw so a
// wrongly typed field fails only its own record.
type jsonExport struct {
	Tasks []json.RawMessage `json:"tasks"`
	Team  []json.RawMessage `json:"team"`
}

type yamlExport struct {
	Tasks []yaml.Node `yaml:"tasks"`
	Team  []yaml.Node `yaml:"team"`
}

func decodeJSONExport(data []byte) (export, error) {
	var raw jsonExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return export{}, err
	}
	return collectRecords(raw.Tasks, raw.Team, func(m json.RawMessage, v any) error {
		return json.Unmarshal(m, v)
	}), nil
}

func decodeYAMLExport(data []byte) (export, error) {
	var raw yamlExport
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return export{}, err
	}
	return collectRecords(raw.Tasks, raw.Team, func(n yaml.Node, v any) error {
		return n.Decode(v)
	}), nil
}

func collectRecords[R any](tasks, team []R, decode func(R, any) error) export {
	var exp export
	for i, raw := range tasks {
		var rec taskRecord
		if err := decode(raw, &rec); err != nil {
			var head struct {
				ID string `json:"id" yaml:"id"`
			}
			_ = decode(raw, &head)
			exp.Issues = append(exp.Issues, DecodeIssue{
				Index:   i,
				TaskID:  strings.TrimSpace(head.ID),
				Field:   decodeErrorField(err),
				Message: err.Error(),
				Skipped: true,
			})
			continue
		}
		rec.index = i
		exp.Tasks = append(exp.Tasks, rec)
	}
	for i, raw := range team {
		var m memberRecord
		if err := decode(raw, &m); err != nil {
			exp.Issues = append(exp.Issues, DecodeIssue{
				Index:   i,
				Field:   teamField,
				Message: err.Error(),
				Skipped: true,
			})
			continue
		}
		exp.Team = append(exp.Team, m)
	}
	return exp
}

const teamField = "team"

// decodeErrorField names the offending field when the decoder reports it.
func decodeErrorField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "record"
}

type taskRecord struct {
	index int

	ID                  string   `json:"id" yaml:"id"`
	Name                string   `json:"name" yaml:"name"`
	Phase               string   `json:"phase" yaml:"phase"`
	Assignee            string   `json:"assignee" yaml:"assignee"`
	Priority            int      `json:"priority" yaml:"priority"`
	Complexity          int      `json:"complexity" yaml:"complexity"`
	StartDate           string   `json:"startDate" yaml:"start_date"`
	DueDate             string   `json:"dueDate" yaml:"due_date"`
	Completed           bool     `json:"completed" yaml:"completed"`
	Status              string   `json:"status" yaml:"status"`
	EstimatedAllocation *float64 `json:"estimatedAllocation" yaml:"estimated_allocation"`
	ActualAllocation    *float64 `json:"actualAllocation" yaml:"actual_allocation"`
	LastModified        string   `json:"lastModified" yaml:"last_modified"`
	BRollRequired       bool     `json:"bRollRequired" yaml:"broll_required"`
}

type memberRecord struct {
	Name        string  `json:"name" yaml:"name"`
	MaxCapacity float64 `json:"maxCapacity" yaml:"max_capacity"`
}

// DecodeIssue describes a problem with one tracker record. Skipped issues
// dropped the record entirely; others only cleared the offending field.
type DecodeIssue struct {
	Index   int
	TaskID  string
	Field   string
	Message string
	Skipped bool
}

func (i DecodeIssue) String() string {
	subject := fmt.Sprintf("record %d", i.Index)
	if i.Field == teamField {
		subject = fmt.Sprintf("team member %d", i.Index)
	} else if i.TaskID != "" {
		subject = fmt.Sprintf("task %s", i.TaskID)
	}
	return fmt.Sprintf("%s: %s: %s", subject, i.Field, i.Message)
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

func (e export) materialize(logger *slog.Logger) Snapshot {
	var snap Snapshot
	for _, issue := range e.Issues {
		snap.Issues = append(snap.Issues, issue)
		logIssue(logger, issue)
	}
	for _, rec := range e.Tasks {
		task, issues := rec.toTask(rec.index)
		snap.Issues = append(snap.Issues, issues...)
		skipped := false
		for _, issue := range issues {
			logIssue(logger, issue)
			skipped = skipped || issue.Skipped
		}
		if !skipped {
			snap.Tasks = append(snap.Tasks, task)
		}
	}
	for _, m := range e.Team {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		snap.Team = append(snap.Team, capacity.TeamMember{Name: name, MaxCapacity: m.MaxCapacity})
	}
	return snap
}

func logIssue(logger *slog.Logger, issue DecodeIssue) {
	logging.WarnWithContext(logger, "tracker record degraded", "tracker_decode",
		logging.String("issue", issue.String()),
		logging.Bool("skipped", issue.Skipped),
		logging.String(logging.FieldErrorHint, "fix the record in the tracker export"),
	)
}

func (r taskRecord) toTask(index int) (capacity.Task, []DecodeIssue) {
	id := strings.TrimSpace(r.ID)
	var issues []DecodeIssue
	issue := func(field, msg string, skipped bool) {
		issues = append(issues, DecodeIssue{Index: index, TaskID: id, Field: field, Message: msg, Skipped: skipped})
	}

	if id == "" {
		issue("id", "missing task id", true)
		return capacity.Task{}, issues
	}
	phase, ok := capacity.ParsePhase(r.Phase)
	if !ok {
		issue("phase", fmt.Sprintf("unknown phase %q", r.Phase), true)
		return capacity.Task{}, issues
	}

	task := capacity.Task{
		ID:                  id,
		Name:                strings.TrimSpace(r.Name),
		Phase:               phase,
		Assignee:            strings.TrimSpace(r.Assignee),
		Priority:            r.Priority,
		Complexity:          r.Complexity,
		Completed:           r.Completed,
		Status:              capacity.ParseProgressStatus(r.Status),
		EstimatedAllocation: r.EstimatedAllocation,
		ActualAllocation:    r.ActualAllocation,
		BRollRequired:       r.BRollRequired,
	}
	var err error
	if task.StartDate, err = parseDate(r.StartDate); err != nil {
		issue("start_date", err.Error(), false)
	}
	if task.DueDate, err = parseDate(r.DueDate); err != nil {
		issue("due_date", err.Error(), false)
	}
	modified, err := parseDate(r.LastModified)
	if err != nil {
		issue("last_modified", err.Error(), false)
	}
	if modified != nil {
		task.LastModified = *modified
	}
	return task, issues
}
