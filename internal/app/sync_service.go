package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

// MetadataKeyExternalID is the trace metadata key carrying the external
// source's identifier for a trace.
const MetadataKeyExternalID = "external_trace_id"

const defaultFetchLimit = 100

// SyncServiceImpl implements the SyncService interface: the boundary that
// pulls trace pages from the external source and pushes reviewed
// annotations back as feedback. External calls are awaited first; their
// results are applied locally as one deterministic update, so a failed call
// never leaves partial local writes.
type SyncServiceImpl struct {
	source    secondary.TraceSource
	sink      secondary.FeedbackSink
	traceRepo secondary.TraceRepository
	tagRepo   secondary.TagRepository
}

// NewSyncService creates a new SyncService with injected dependencies.
func NewSyncService(source secondary.TraceSource, sink secondary.FeedbackSink, traceRepo secondary.TraceRepository, tagRepo secondary.TagRepository) *SyncServiceImpl {
	return &SyncServiceImpl{
		source:    source,
		sink:      sink,
		traceRepo: traceRepo,
		tagRepo:   tagRepo,
	}
}

// ImportFromSource fetches one page of external records, translates them,
// and upserts the translated traces into the trace store. Records that
// cannot be translated are skipped with a per-item failure; they do not
// fail the page.
func (s *SyncServiceImpl) ImportFromSource(ctx context.Context, req primary.SyncImportRequest) (*primary.SyncImportResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	page, err := s.source.FetchPage(ctx, req.Cursor, limit)
	if err != nil {
		return nil, err
	}

	resp := &primary.SyncImportResponse{NextCursor: page.NextCursor}
	for i, record := range page.Records {
		trace, terr := translateExternal(record, i)
		if terr != nil {
			resp.Failures = append(resp.Failures, primary.SyncFailure{
				TraceID: record.ID,
				Reason:  terr.Error(),
			})
			continue
		}
		resp.Traces = append(resp.Traces, trace)
	}

	for _, trace := range resp.Traces {
		if err := s.traceRepo.Upsert(ctx, traceToRecord(trace)); err != nil {
			return nil, fmt.Errorf("failed to store fetched trace %s: %w", trace.ID, err)
		}
	}
	resp.ImportedCount = len(resp.Traces)

	return resp, nil
}

// SubmitFeedback submits the review outcome of the given traces to the
// feedback sink. Per-item eligibility: the trace must exist and be
// reviewed. A pass maps to score 1.0 and a fail to 0.0; a deferred verdict
// emits no score field at all. Tag refs are resolved to tag names at
// submission time, dangling ids silently dropped. Zero eligible items is
// not an error; the full failure list is still reported.
func (s *SyncServiceImpl) SubmitFeedback(ctx context.Context, traceIDs []string) (*primary.SubmitFeedbackResponse, error) {
	resp := &primary.SubmitFeedbackResponse{}

	var items []secondary.FeedbackItem
	for _, traceID := range traceIDs {
		trace, err := s.traceRepo.GetByID(ctx, traceID)
		if err != nil {
			if review.IsNotFound(err) {
				resp.Failures = append(resp.Failures, primary.SyncFailure{TraceID: traceID, Reason: "trace not found"})
				continue
			}
			return nil, fmt.Errorf("failed to load trace %s: %w", traceID, err)
		}
		if !trace.Reviewed {
			resp.Failures = append(resp.Failures, primary.SyncFailure{TraceID: traceID, Reason: "trace not reviewed"})
			continue
		}

		item, err := s.buildFeedbackItem(ctx, trace)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return resp, nil
	}

	if err := s.sink.SubmitFeedback(ctx, items); err != nil {
		return nil, err
	}

	resp.ExportedCount = len(items)
	return resp, nil
}

func (s *SyncServiceImpl) buildFeedbackItem(ctx context.Context, trace *secondary.TraceRecord) (secondary.FeedbackItem, error) {
	var scores map[string]float64
	switch review.Verdict(trace.Verdict) {
	case review.VerdictPass:
		scores = map[string]float64{"pass_fail": 1.0}
	case review.VerdictFail:
		scores = map[string]float64{"pass_fail": 0.0}
	}

	tagNames, err := s.resolveTagNames(ctx, trace.TagRefs)
	if err != nil {
		return secondary.FeedbackItem{}, err
	}

	id := trace.ID
	if ext, ok := trace.Metadata[MetadataKeyExternalID].(string); ok && ext != "" {
		id = ext
	}

	return secondary.FeedbackItem{
		ID:      id,
		Scores:  scores,
		Comment: trace.OpenCode,
		Metadata: map[string]any{
			"axial_tags":  tagNames,
			"reviewer":    trace.ReviewerID,
			"reviewed_at": trace.ReviewedAt,
		},
	}, nil
}

// resolveTagNames maps tag ids to live tag names, dropping dangling ids.
func (s *SyncServiceImpl) resolveTagNames(ctx context.Context, tagIDs []string) ([]string, error) {
	names := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.tagRepo.GetByID(ctx, tagID)
		if err != nil {
			if review.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve tag %s: %w", tagID, err)
		}
		names = append(names, tag.Name)
	}
	return names, nil
}

// translateExternal converts one external record into the internal trace
// shape. The external identifier is preserved under the external_trace_id
// metadata key; it seeds the internal id only when the record carries one.
// Unknown external fields pass through into metadata verbatim.
func translateExternal(record secondary.ExternalTraceRecord, index int) (*primary.Trace, error) {
	if record.Input == nil && record.Output == nil {
		return nil, &review.TranslationError{
			Source: "trace source",
			Key:    record.ID,
			Err:    fmt.Errorf("record has neither input nor output"),
		}
	}

	id := record.ID
	if id == "" {
		id = fmt.Sprintf("ext_%d", index)
	}

	metadata := map[string]any{
		MetadataKeyExternalID: record.ID,
		"timestamp":           record.Created,
	}
	if len(record.Scores) > 0 {
		metadata["scores"] = record.Scores
	}
	for k, v := range record.Metadata {
		if k == "system_prompt" {
			continue
		}
		metadata[k] = v
	}
	for k, v := range record.Extra {
		metadata[k] = v
	}

	systemPrompt := ""
	if sp, ok := record.Metadata["system_prompt"].(string); ok {
		systemPrompt = sp
	}

	return &primary.Trace{
		ID:           id,
		UserInput:    coerceString(record.Input),
		AgentOutput:  coerceString(record.Output),
		SystemPrompt: systemPrompt,
		Metadata:     metadata,
		TagRefs:      []string{},
	}, nil
}

// coerceString renders an arbitrary external JSON value as text. Strings
// pass through; structured values keep their JSON form.
func coerceString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}

// Ensure SyncServiceImpl implements the interface.
var _ primary.SyncService = (*SyncServiceImpl)(nil)
