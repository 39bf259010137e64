package service

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// fcmMaxTokens is the multicast limit of the FCM API.
const fcmMaxTokens = 500

type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMClient sends pushes to native ios/android device tokens through
// Firebase Cloud Messaging.
type FCMClient struct {
	client multicaster
}

// NewFCMClient builds a client from service account fields. The private key
// may carry literal "\n" sequences as it usually does in .env files.
func NewFCMClient(ctx context.Context, projectID, clientEmail, privateKey string) (*FCMClient, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logrus.WithField("project", projectID).Info("[FCM] Initialized")
	return &FCMClient{client: client}, nil
}

// SendToTokens multicasts in chunks of fcmMaxTokens. FCM data values must be
// strings, so data is stringified.
func (c *FCMClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]interface{}) error {
	if len(tokens) == 0 {
		return nil
	}

	payload := make(map[string]string, len(data))
	for k, v := range data {
		payload[k] = fmt.Sprint(v)
	}

	for start := 0; start < len(tokens); start += fcmMaxTokens {
		end := min(start+fcmMaxTokens, len(tokens))
		batch := tokens[start:end]

		resp, err := c.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Data:   payload,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Android: &messaging.AndroidConfig{
				Priority:     "high",
				Notification: &messaging.AndroidNotification{Sound: "default"},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
			},
		})
		if err != nil {
			return fmt.Errorf("send multicast: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"tokens":  len(batch),
			"success": resp.SuccessCount,
			"failure": resp.FailureCount,
		}).Debug("[FCM] Multicast sent")

		for i, r := range resp.Responses {
			if !r.Success {
				logrus.WithError(r.Error).WithField("token_index", start+i).Warn("[FCM] Token failed")
			}
		}
	}
	return nil
}
