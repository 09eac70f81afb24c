package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kev1N916/trial-bot/internal/models"
	"golang.org/x/oauth2/clientcredentials"
)

const botFrameworkScope = "https://api.botframework.com/.default"

// ConnectorClient sends activities through the Bot Framework connector.
type ConnectorClient struct {
	Client *http.Client
}

// NewConnectorClient returns an unauthenticated client when appID is empty,
// which is what the local emulator expects.
func NewConnectorClient(appID, appPassword, tenantID string) *ConnectorClient {
	if appID == "" {
		return &ConnectorClient{Client: &http.Client{Timeout: 15 * time.Second}}
	}
	if tenantID == "" {
		tenantID = "botframework.com"
	}

	config := clientcredentials.Config{
		ClientID:     appID,
		ClientSecret: appPassword,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{botFrameworkScope},
	}
	client := config.Client(context.Background())
	client.Timeout = 15 * time.Second

	return &ConnectorClient{Client: client}
}

// SendActivity posts activity into the conversation described by ref. An
// activity with ReplyToID set is sent as a reply.
func (cc *ConnectorClient) SendActivity(ctx context.Context, ref models.ConversationReference, activity models.Activity) error {
	if ref.ServiceURL == "" || ref.ConversationID == "" {
		return fmt.Errorf("conversation reference is missing service URL or conversation ID")
	}

	activity.ServiceURL = ref.ServiceURL
	activity.ChannelID = ref.ChannelID
	activity.From = models.ChannelAccount{ID: ref.BotID, Name: ref.BotName}
	activity.Recipient = models.ChannelAccount{ID: ref.UserID, Name: ref.UserName}
	activity.Conversation = models.ConversationAccount{ID: ref.ConversationID, TenantID: ref.TenantID}

	apiURL := fmt.Sprintf("%s/v3/conversations/%s/activities", strings.TrimRight(ref.ServiceURL, "/"), url.PathEscape(ref.ConversationID))
	if activity.ReplyToID != "" {
		apiURL += "/" + url.PathEscape(activity.ReplyToID)
	}

	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create connector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("connector returned non-2xx status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	return nil
}
