package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"sales-cockpit/internal/domain"
	"sales-cockpit/internal/ports"
)

// SummaryService turns a recorded call into a persisted structured
// summary: transcription first, then one chat-completion pass that
// extracts the structured fields.
type SummaryService struct {
	transcriber ports.Transcriber
	chat        ports.ChatClient
	summaries   ports.SummaryRepository
	logger      ports.Logger

	now   func() time.Time
	newID func() string
}

func NewSummaryService(transcriber ports.Transcriber, chat ports.ChatClient, summaries ports.SummaryRepository, logger ports.Logger) *SummaryService {
	return &SummaryService{
		transcriber: transcriber,
		chat:        chat,
		summaries:   summaries,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

type structuredSummary struct {
	Summary     string   `json:"summary"`
	Customer    string   `json:"customer"`
	ActionItems []string `json:"action_items"`
	Sentiment   string   `json:"sentiment"`
}

func (s *SummaryService) Summarize(ctx context.Context, callerID, filename string, audio io.Reader) (domain.CallSummary, error) {
	if callerID == "" {
		return domain.CallSummary{}, domain.ErrNotAuthenticated
	}
	if audio == nil {
		return domain.CallSummary{}, fmt.Errorf("%w: audio is required", domain.ErrInvalidInput)
	}

	transcript, err := s.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return domain.CallSummary{}, err
	}
	if strings.TrimSpace(transcript) == "" {
		return domain.CallSummary{}, fmt.Errorf("%w: transcription produced no text", domain.ErrUpstreamService)
	}

	raw, err := s.chat.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: summarySystemPrompt},
		{Role: domain.ChatRoleUser, Content: buildSummaryPrompt(transcript)},
	})
	if err != nil {
		return domain.CallSummary{}, err
	}
	structured, err := parseStructuredSummary(raw)
	if err != nil {
		return domain.CallSummary{}, err
	}

	summary := domain.CallSummary{
		ID:          s.newID(),
		OwnerID:     callerID,
		Transcript:  transcript,
		Summary:     structured.Summary,
		Customer:    structured.Customer,
		ActionItems: structured.ActionItems,
		Sentiment:   structured.Sentiment,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.summaries.Put(ctx, summary); err != nil {
		return domain.CallSummary{}, fmt.Errorf("%w: store summary: %v", domain.ErrUpstreamQuery, err)
	}
	s.logger.Info(ctx, "call summary stored", "caller_id", callerID, "summary_id", summary.ID)
	return summary, nil
}

func (s *SummaryService) List(ctx context.Context, callerID string) ([]domain.CallSummary, error) {
	if callerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	summaries, err := s.summaries.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list summaries: %v", domain.ErrUpstreamQuery, err)
	}
	return summaries, nil
}

// parseStructuredSummary decodes the model's JSON answer, tolerating a
// markdown code fence around it.
func parseStructuredSummary(raw string) (structuredSummary, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	var structured structuredSummary
	if err := json.Unmarshal([]byte(trimmed), &structured); err != nil {
		return structuredSummary{}, fmt.Errorf("%w: malformed structured summary: %v", domain.ErrUpstreamService, err)
	}
	if structured.Summary == "" {
		return structuredSummary{}, fmt.Errorf("%w: structured summary is empty", domain.ErrUpstreamService)
	}
	return structured, nil
}
