// Package export renders review sessions into portable report formats.
package export

import (
	"sort"
	"time"

	"github.com/example/sift/internal/ports/primary"
)

// Report is the format-independent projection of a session that every
// exporter renders. Building it is a pure function of the session and the
// tag registry; rendering never consults services.
type Report struct {
	SessionID   string    `json:"session_id" yaml:"session_id"`
	SessionName string    `json:"session_name" yaml:"session_name"`
	GeneratedAt string    `json:"generated_at" yaml:"generated_at"`
	Summary     Summary   `json:"summary" yaml:"summary"`
	Tags        []TagLine `json:"failure_modes" yaml:"failure_modes"`
	Rows        []Row     `json:"traces" yaml:"traces"`
}

// Summary holds the session counters and the derived pass rate.
type Summary struct {
	TotalTraces   int     `json:"total_traces" yaml:"total_traces"`
	ReviewedCount int     `json:"reviewed_count" yaml:"reviewed_count"`
	PassedCount   int     `json:"passed_count" yaml:"passed_count"`
	FailedCount   int     `json:"failed_count" yaml:"failed_count"`
	DeferredCount int     `json:"deferred_count" yaml:"deferred_count"`
	PassRate      float64 `json:"pass_rate" yaml:"pass_rate"`
}

// TagLine is one entry of the failure mode distribution.
type TagLine struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Row is one trace with its tag refs resolved to names.
type Row struct {
	TraceID      string         `json:"trace_id" yaml:"trace_id"`
	UserInput    string         `json:"user_input" yaml:"user_input"`
	AgentOutput  string         `json:"agent_output" yaml:"agent_output"`
	SystemPrompt string         `json:"system_prompt" yaml:"system_prompt"`
	Verdict      string         `json:"verdict" yaml:"verdict"`
	OpenCode     string         `json:"open_code" yaml:"open_code"`
	TagNames     []string       `json:"axial_tags" yaml:"axial_tags"`
	ReviewerID   string         `json:"reviewer_id" yaml:"reviewer_id"`
	ReviewedAt   string         `json:"reviewed_at" yaml:"reviewed_at"`
	Metadata     map[string]any `json:"metadata" yaml:"metadata"`
}

// BuildReport projects a session into a Report. Tag refs resolve against the
// given tags (usually the live registry); refs with no live tag are dropped
// from the output. When tags is nil the session's own snapshot is used.
// The pass rate is passed over reviewed, with reviewed floored at one so an
// unreviewed session reports zero rather than dividing by zero.
func BuildReport(session *primary.Session, tags []*primary.Tag) *Report {
	if tags == nil {
		tags = session.TagSnapshot
	}
	names := make(map[string]string, len(tags))
	for _, tag := range tags {
		names[tag.ID] = tag.Name
	}

	report := &Report{
		SessionID:   session.ID,
		SessionName: session.Name,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: Summary{
			TotalTraces:   session.TotalTraces,
			ReviewedCount: session.ReviewedCount,
			PassedCount:   session.PassedCount,
			FailedCount:   session.FailedCount,
			DeferredCount: session.DeferredCount,
			PassRate:      passRate(session.PassedCount, session.ReviewedCount),
		},
	}

	counts := make(map[string]int)
	for _, trace := range session.Traces {
		row := Row{
			TraceID:      trace.ID,
			UserInput:    trace.UserInput,
			AgentOutput:  trace.AgentOutput,
			SystemPrompt: trace.SystemPrompt,
			Verdict:      trace.Verdict,
			OpenCode:     trace.OpenCode,
			TagNames:     []string{},
			ReviewerID:   trace.ReviewerID,
			ReviewedAt:   trace.ReviewedAt,
			Metadata:     trace.Metadata,
		}
		for _, ref := range trace.TagRefs {
			name, ok := names[ref]
			if !ok {
				continue
			}
			row.TagNames = append(row.TagNames, name)
			counts[name]++
		}
		report.Rows = append(report.Rows, row)
	}

	report.Tags = make([]TagLine, 0, len(counts))
	for name, count := range counts {
		report.Tags = append(report.Tags, TagLine{Name: name, Count: count})
	}
	sort.Slice(report.Tags, func(i, j int) bool {
		if report.Tags[i].Count != report.Tags[j].Count {
			return report.Tags[i].Count > report.Tags[j].Count
		}
		return report.Tags[i].Name < report.Tags[j].Name
	})

	return report
}

func passRate(passed, reviewed int) float64 {
	if reviewed < 1 {
		reviewed = 1
	}
	return float64(passed) / float64(reviewed)
}
