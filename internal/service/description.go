package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rentnest-backend/internal/domain"
	"rentnest-backend/internal/logger"
)

const defaultDescriptionModel = "gpt-4o-mini"

// DescriptionClient calls an OpenAI-compatible chat completions endpoint.
// Failures are returned as domain.ErrExternal and never retried.
type DescriptionClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewDescriptionClient(baseURL, apiKey, model string, timeout time.Duration) *DescriptionClient {
	if model == "" {
		model = defaultDescriptionModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DescriptionClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *DescriptionClient) GenerateDescription(ctx context.Context, p *domain.Property) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: description service is not configured", domain.ErrExternal)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write short, factual rental listing descriptions."},
			{Role: "user", Content: descriptionPrompt(p)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.ExternalServiceCall("AI", "ChatCompletion", "propertyID", p.ID, "model", c.model)
	resp, err := c.client.Do(req)
	if err != nil {
		logger.ExternalServiceResult("AI", "ChatCompletion", err)
		return "", fmt.Errorf("%w: %v", domain.ErrExternal, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrExternal, err)
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: decode response: %v", domain.ErrExternal, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil {
			msg = out.Error.Message
		}
		err := fmt.Errorf("%w: status %d: %s", domain.ErrExternal, resp.StatusCode, msg)
		logger.ExternalServiceResult("AI", "ChatCompletion", err)
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrExternal)
	}
	logger.ExternalServiceResult("AI", "ChatCompletion", nil)
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func descriptionPrompt(p *domain.Property) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a rental listing description of about 80 words.\n")
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "City: %s\n", p.City)
	if p.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", p.Address)
	}
	fmt.Fprintf(&b, "Bedrooms: %d\n", p.Bedrooms)
	fmt.Fprintf(&b, "Monthly rent: %s\n", money(p.Rent))
	fmt.Fprintf(&b, "Security deposit: %s\n", money(p.SecurityDeposit))
	if p.Description != "" {
		fmt.Fprintf(&b, "Owner notes: %s\n", p.Description)
	}
	return b.String()
}
