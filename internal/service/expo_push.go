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

	"github.com/sirupsen/logrus"
)

// ExpoPushClient sends push notifications via Expo's Push API.
// The mobile app registers its "ExponentPushToken[...]" with us and Expo
// routes the push to APNs or FCM.
type ExpoPushClient struct {
	httpClient *http.Client
	endpoint   string
}

// ExpoPushMessage is the payload for Expo's Push API.
type ExpoPushMessage struct {
	To       []string               `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// ExpoPushResponse is the response from Expo's API.
type ExpoPushResponse struct {
	Data []ExpoPushTicket `json:"data"`
}

type ExpoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", ...
	} `json:"details,omitempty"`
}

const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// NewExpoPushClient creates a client for endpoint; empty means Expo's public API.
func NewExpoPushClient(endpoint string) *ExpoPushClient {
	if endpoint == "" {
		endpoint = DefaultExpoPushURL
	}
	return &ExpoPushClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
	}
}

// IsExpoToken reports whether token looks like an Expo push token.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// SendToTokens sends one notification to every valid Expo token.
// Per-ticket failures are logged, not returned: Expo accepted the batch.
func (c *ExpoPushClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) error {
	validTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if IsExpoToken(token) {
			validTokens = append(validTokens, token)
		} else {
			logrus.WithField("token", token[:min(20, len(token))]).Debug("[ExpoPush] Skipping invalid token format")
		}
	}
	if len(validTokens) == 0 {
		return nil
	}

	payload, err := json.Marshal(ExpoPushMessage{
		To:       validTokens,
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: "high",
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var pushResp ExpoPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		logrus.WithError(err).Warn("[ExpoPush] Failed to parse response")
		return nil
	}

	failed := 0
	for i, ticket := range pushResp.Data {
		if ticket.Status != "ok" {
			failed++
			logrus.WithFields(logrus.Fields{
				"index":   i,
				"message": ticket.Message,
				"error":   ticket.Details.Error,
			}).Warn("[ExpoPush] Ticket failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"tokens": len(validTokens),
		"failed": failed,
	}).Debug("[ExpoPush] Sent")
	return nil
}
