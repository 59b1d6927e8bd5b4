package application

import (
	"context"
	"fmt"
	"strings"

	"sales-cockpit/internal/domain"
	"sales-cockpit/internal/ports"
)

type GenerateEmailInput struct {
	Recipient string
	KeyPoints []string
	Tone      string
	Language  string
}

type ImproveEmailInput struct {
	Draft       string
	Instruction string
	Tone        string
	Language    string
}

// EmailService drafts and reworks business emails through the
// chat-completion port. Nothing is persisted; history is a client
// concern.
type EmailService struct {
	chat   ports.ChatClient
	logger ports.Logger
}

func NewEmailService(chat ports.ChatClient, logger ports.Logger) *EmailService {
	return &EmailService{chat: chat, logger: logger}
}

func (s *EmailService) Generate(ctx context.Context, callerID string, in GenerateEmailInput) (string, error) {
	if callerID == "" {
		return "", domain.ErrNotAuthenticated
	}
	points := make([]string, 0, len(in.KeyPoints))
	for _, point := range in.KeyPoints {
		if strings.TrimSpace(point) != "" {
			points = append(points, strings.TrimSpace(point))
		}
	}
	if len(points) == 0 {
		return "", fmt.Errorf("%w: at least one key point is required", domain.ErrInvalidInput)
	}
	in.KeyPoints = points

	draft, err := s.chat.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: emailSystemPrompt},
		{Role: domain.ChatRoleUser, Content: buildGenerateEmailPrompt(in)},
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "email drafted", "caller_id", callerID, "key_points", len(points))
	return strings.TrimSpace(draft), nil
}

func (s *EmailService) Improve(ctx context.Context, callerID string, in ImproveEmailInput) (string, error) {
	if callerID == "" {
		return "", domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(in.Draft) == "" {
		return "", fmt.Errorf("%w: draft is required", domain.ErrInvalidInput)
	}
	improved, err := s.chat.Complete(ctx, []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: emailSystemPrompt},
		{Role: domain.ChatRoleUser, Content: buildImproveEmailPrompt(in)},
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(ctx, "email improved", "caller_id", callerID)
	return strings.TrimSpace(improved), nil
}
