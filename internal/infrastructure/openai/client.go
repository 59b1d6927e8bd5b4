// Package openai is a thin client for an OpenAI-compatible API: chat
// completions for email drafting and call structuring, and audio
// transcription for recorded calls.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"sales-cockpit/internal/domain"
)

type Client struct {
	baseURL            string
	apiKey             string
	chatModel          string
	transcriptionModel string
	httpClient         *http.Client
}

func NewClient(baseURL, apiKey, chatModel, transcriptionModel string, timeout time.Duration) *Client {
	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		apiKey:             apiKey,
		chatModel:          chatModel,
		transcriptionModel: transcriptionModel,
		httpClient:         &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one chat-completion round trip and returns the first
// choice's content.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.chatModel, Messages: messages})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", domain.ErrUpstreamService, err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode chat completion: %v", domain.ErrUpstreamService, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := "status " + resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: chat completion: %s", domain.ErrUpstreamService, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", domain.ErrUpstreamService)
	}
	return parsed.Choices[0].Message.Content, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads an audio stream and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := form.WriteField("model", c.transcriptionModel); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: transcription: %v", domain.ErrUpstreamService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: transcription: status %s", domain.ErrUpstreamService, resp.Status)
	}
	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode transcription: %v", domain.ErrUpstreamService, err)
	}
	return parsed.Text, nil
}
