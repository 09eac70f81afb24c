package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AgentClient notifies the companion agent service.
type AgentClient struct {
	Client  *http.Client
	BaseURL string
}

type AgentMessage struct {
	ConversationID string
	SprintID       string
	BoardID        string
	Prompt         string
}

func NewAgentClient(baseURL string) (*AgentClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("agent base URL is not configured")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid agent base URL %q: %w", baseURL, err)
	}

	return &AgentClient{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
	}, nil
}

func (ac *AgentClient) NotifyPrompt(ctx context.Context, msg AgentMessage) error {
	query := url.Values{}
	query.Set("conversationId", msg.ConversationID)
	if msg.SprintID != "" {
		query.Set("sprintId", msg.SprintID)
	}
	if msg.BoardID != "" {
		query.Set("boardId", msg.BoardID)
	}
	query.Set("prompt", msg.Prompt)

	apiURL := ac.BaseURL + "/message?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create agent request: %w", err)
	}

	resp, err := ac.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send agent request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("agent returned non-2xx status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	zap.L().Info("Notified agent", zap.String("conversationID", msg.ConversationID), zap.String("sprintID", msg.SprintID))

	return nil
}
