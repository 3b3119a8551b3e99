package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedDemoData populates the database with a demo review session: a snack
// recommendation agent with a small starter taxonomy and a mix of reviewed
// and unreviewed traces. Safe to call once on an empty database.
func SeedDemoData(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	tags := []struct{ id, name, desc, color string }{
		{"tag_demo0001", "Hallucination", "The agent invents products, brands, or facts that do not exist in the catalog", "#EF4444"},
		{"tag_demo0002", "Ignored Preference", "The agent recommends items conflicting with a dietary restriction or stated preference", "#F59E0B"},
		{"tag_demo0003", "Vague Answer", "The agent gives a generic response instead of concrete recommendations the user can act on", "#3B82F6"},
	}
	for _, t := range tags {
		if _, err := database.Exec(
			"INSERT INTO tags (id, name, description, color, created_at) VALUES (?, ?, ?, ?, ?)",
			t.id, t.name, t.desc, t.color, now,
		); err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}
	}

	traces := []struct {
		id, input, output          string
		reviewed                   bool
		verdict, openCode, tagRefs string
	}{
		{
			id:     "trace_demo001",
			input:  "I'm vegan and love spicy food. What snacks should I try?",
			output: "You should try spicy chili lime chickpeas, wasabi peas, and sriracha cashews.",
		},
		{
			id:       "trace_demo002",
			input:    "What's a good snack for a road trip?",
			output:   "I recommend the new CrunchMaster Galaxy Bites, a best-seller this month.",
			reviewed: true, verdict: "fail",
			openCode: "recommended a product that does not exist",
			tagRefs:  `["tag_demo0001"]`,
		},
		{
			id:       "trace_demo003",
			input:    "I'm allergic to peanuts. Any protein-rich snacks?",
			output:   "Peanut butter protein bars are a great choice for you.",
			reviewed: true, verdict: "fail",
			openCode: "suggested peanuts to a user with a peanut allergy",
			tagRefs:  `["tag_demo0002"]`,
		},
		{
			id:       "trace_demo004",
			input:    "What should I snack on while studying?",
			output:   "There are many great snacks out there. It depends on what you like!",
			reviewed: true, verdict: "fail",
			openCode: "non-answer, no concrete recommendation",
			tagRefs:  `["tag_demo0003"]`,
		},
		{
			id:       "trace_demo005",
			input:    "Something sweet but under 200 calories?",
			output:   "Try a dark chocolate rice cake or a small pack of dried mango, both under 200 calories.",
			reviewed: true, verdict: "pass",
		},
		{
			id:     "trace_demo006",
			input:  "Can you suggest a savory snack that pairs with coffee?",
			output: "A toasted cheese biscotti or rosemary crackers pair well with coffee.",
		},
	}

	var traceIDs string
	for i, tr := range traces {
		tagRefs := tr.tagRefs
		if tagRefs == "" {
			tagRefs = "[]"
		}
		reviewed := 0
		reviewedAt := ""
		if tr.reviewed {
			reviewed = 1
			reviewedAt = now
		}
		if _, err := database.Exec(
			`INSERT INTO traces (id, user_input, agent_output, reviewed, verdict, open_code, tag_refs, reviewer_id, reviewed_at, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '{"source": "demo"}')`,
			tr.id, tr.input, tr.output, reviewed, tr.verdict, tr.openCode, tagRefs, "demo-reviewer", reviewedAt,
		); err != nil {
			return fmt.Errorf("seed traces: %w", err)
		}
		if i > 0 {
			traceIDs += ", "
		}
		traceIDs += `"` + tr.id + `"`
	}

	// Usage counts reflect the seeded tag refs above.
	for _, tagID := range []string{"tag_demo0001", "tag_demo0002", "tag_demo0003"} {
		if _, err := database.Exec(
			"UPDATE tags SET usage_count = 1 WHERE id = ?", tagID,
		); err != nil {
			return fmt.Errorf("seed usage counts: %w", err)
		}
	}

	if _, err := database.Exec(
		`INSERT INTO sessions (id, name, trace_ids, tag_snapshot, mode, total_traces, reviewed_count, passed_count, failed_count, deferred_count, source, created_at, updated_at)
		 VALUES (?, ?, ?, '[]', 'combined', 6, 4, 1, 3, 0, 'demo', ?, ?)`,
		"session_demo01", "Demo: Snack Assistant Review", "["+traceIDs+"]", now, now,
	); err != nil {
		return fmt.Errorf("seed session: %w", err)
	}

	return nil
}
