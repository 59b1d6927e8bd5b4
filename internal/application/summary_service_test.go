package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sales-cockpit/internal/domain"
)

const structuredAnswer = `{"summary":"Discussed renewal terms.","customer":"Acme","action_items":["send quote"],"sentiment":"positive"}`

func newSummaryFixture() (*transcriberMock, *chatMock, *summaryRepoMock, *SummaryService) {
	transcriber := new(transcriberMock)
	chat := new(chatMock)
	repo := new(summaryRepoMock)
	svc := NewSummaryService(transcriber, chat, repo, nopLogger{})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "summary-1" }
	return transcriber, chat, repo, svc
}

func TestSummarize_TranscribesStructuresAndStores(t *testing.T) {
	transcriber, chat, repo, svc := newSummaryFixture()
	audio := strings.NewReader("fake audio bytes")

	transcriber.On("Transcribe", mock.Anything, "call.mp3", audio).
		Return("Customer asked about renewal pricing.", nil)
	chat.On("Complete", mock.Anything, mock.MatchedBy(func(messages []domain.ChatMessage) bool {
		return len(messages) == 2 &&
			strings.Contains(messages[1].Content, "Customer asked about renewal pricing.")
	})).Return(structuredAnswer, nil)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(s domain.CallSummary) bool {
		return s.ID == "summary-1" && s.OwnerID == "u1" &&
			s.Summary == "Discussed renewal terms." && s.Customer == "Acme" &&
			len(s.ActionItems) == 1 && s.Sentiment == "positive"
	})).Return(nil)

	summary, err := svc.Summarize(context.Background(), "u1", "call.mp3", audio)
	require.NoError(t, err)
	assert.Equal(t, "Customer asked about renewal pricing.", summary.Transcript)
	assert.Equal(t, "Discussed renewal terms.", summary.Summary)
	repo.AssertExpectations(t)
}

func TestSummarize_AcceptsFencedJSON(t *testing.T) {
	transcriber, chat, repo, svc := newSummaryFixture()
	audio := strings.NewReader("bytes")

	transcriber.On("Transcribe", mock.Anything, "call.wav", audio).Return("some transcript", nil)
	chat.On("Complete", mock.Anything, mock.Anything).
		Return("```json\n"+structuredAnswer+"\n```", nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Summarize(context.Background(), "u1", "call.wav", audio)
	require.NoError(t, err)
	assert.Equal(t, "Acme", summary.Customer)
}

func TestSummarize_MalformedStructureFails(t *testing.T) {
	transcriber, chat, repo, svc := newSummaryFixture()
	audio := strings.NewReader("bytes")

	transcriber.On("Transcribe", mock.Anything, "call.wav", audio).Return("some transcript", nil)
	chat.On("Complete", mock.Anything, mock.Anything).Return("sorry, I cannot do that", nil)

	_, err := svc.Summarize(context.Background(), "u1", "call.wav", audio)
	assert.ErrorIs(t, err, domain.ErrUpstreamService)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSummarize_EmptyTranscriptFails(t *testing.T) {
	transcriber, chat, _, svc := newSummaryFixture()
	audio := strings.NewReader("bytes")

	transcriber.On("Transcribe", mock.Anything, "call.wav", audio).Return("  ", nil)

	_, err := svc.Summarize(context.Background(), "u1", "call.wav", audio)
	assert.ErrorIs(t, err, domain.ErrUpstreamService)
	chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestSummarize_StoreFailureSurfaces(t *testing.T) {
	transcriber, chat, repo, svc := newSummaryFixture()
	audio := strings.NewReader("bytes")

	transcriber.On("Transcribe", mock.Anything, "call.wav", audio).Return("some transcript", nil)
	chat.On("Complete", mock.Anything, mock.Anything).Return(structuredAnswer, nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	_, err := svc.Summarize(context.Background(), "u1", "call.wav", audio)
	assert.ErrorIs(t, err, domain.ErrUpstreamQuery)
}

func TestSummarize_RequiresSessionAndAudio(t *testing.T) {
	_, _, _, svc := newSummaryFixture()

	_, err := svc.Summarize(context.Background(), "", "call.wav", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = svc.Summarize(context.Background(), "u1", "call.wav", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListSummaries_OwnOnly(t *testing.T) {
	_, _, repo, svc := newSummaryFixture()

	repo.On("ListByOwner", mock.Anything, "u1").Return([]domain.CallSummary{
		{ID: "s2", OwnerID: "u1"},
		{ID: "s1", OwnerID: "u1"},
	}, nil)

	summaries, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestListSummaries_UpstreamFailureSurfaces(t *testing.T) {
	_, _, repo, svc := newSummaryFixture()

	repo.On("ListByOwner", mock.Anything, "u1").
		Return([]domain.CallSummary(nil), errors.New("down"))

	_, err := svc.List(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrUpstreamQuery)
}
