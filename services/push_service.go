package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"backend/config"
	"backend/errs"
	"backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	expoPushURL = "https://exp.host/--/api/v2/push/send"

	// Expo rejects requests carrying more than 100 messages.
	expoMaxBatch = 100

	pushSound      = "default"
	pushPriority   = "high"
	pushChannelID  = "visits"
	requestTimeout = 10 * time.Second
)

// ExpoMessage is one outbound message in Expo's wire format.
type ExpoMessage struct {
	To        string            `json:"to"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Sound     string            `json:"sound"`
	Priority  string            `json:"priority"`
	ChannelID string            `json:"channelId"`
}

// ExpoTicket is the per-message receipt Expo returns.
type ExpoTicket struct {
	Status  string `json:"status"` // "ok" | "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type expoResponse struct {
	Data []ExpoTicket `json:"data"`
}

// PushTransport sends one batch of at most expoMaxBatch messages.
type PushTransport interface {
	Send(ctx context.Context, batch []ExpoMessage) ([]ExpoTicket, error)
}

type expoTransport struct {
	client *http.Client
	url    string
}

// NewExpoTransport returns the production transport talking to Expo's push
// endpoint. Expo has no official Go SDK; the API is a single JSON POST.
func NewExpoTransport() PushTransport {
	return &expoTransport{
		client: &http.Client{Timeout: requestTimeout},
		url:    expoPushURL,
	}
}

func (t *expoTransport) Send(ctx context.Context, batch []ExpoMessage) ([]ExpoTicket, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, &errs.TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &errs.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := os.Getenv("EXPO_ACCESS_TOKEN"); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &errs.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.TransportError{Err: fmt.Errorf("expo returned %s", resp.Status)}
	}

	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &errs.TransportError{Err: err}
	}
	return out.Data, nil
}

// DispatchResult reports a best-effort fan-out. OK means every chunk was
// attempted; Delivered counts tickets Expo accepted.
type DispatchResult struct {
	Delivered int
	OK        bool
}

type PushService struct {
	db        *gorm.DB
	transport PushTransport
}

// NewPushService builds the dispatcher. A nil transport selects Expo.
func NewPushService(db *gorm.DB, transport PushTransport) *PushService {
	if transport == nil {
		transport = NewExpoTransport()
	}
	return &PushService{db: db, transport: transport}
}

// Dispatch sends title/body/data to every token, at most once per token, in
// chunks of expoMaxBatch. A failed chunk is logged and the rest still go
// out; the caller never sees an error.
func (p *PushService) Dispatch(ctx context.Context, tokens []string, title, body string, data map[string]string) DispatchResult {
	tokens = dedupeTokens(tokens)
	if len(tokens) == 0 {
		return DispatchResult{Delivered: 0, OK: true}
	}

	res := DispatchResult{OK: true}
	for start := 0; start < len(tokens); start += expoMaxBatch {
		if ctx.Err() != nil {
			res.OK = false
			break
		}
		end := start + expoMaxBatch
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := make([]ExpoMessage, 0, end-start)
		for _, to := range tokens[start:end] {
			batch = append(batch, ExpoMessage{
				To:        to,
				Title:     title,
				Body:      body,
				Data:      data,
				Sound:     pushSound,
				Priority:  pushPriority,
				ChannelID: pushChannelID,
			})
		}

		tickets, err := p.transport.Send(ctx, batch)
		if err != nil {
			config.Warning("push chunk of %d failed: %v", len(batch), err)
			continue
		}
		for _, t := range tickets {
			if t.Status == "ok" {
				res.Delivered++
			} else {
				config.Warning("push ticket rejected: %s", t.Message)
			}
		}
	}
	return res
}

// TokensForUsers returns every device token registered to the given users.
// Lookup failure degrades to an empty set.
func (p *PushService) TokensForUsers(userIDs []string) []string {
	if len(userIDs) == 0 {
		return nil
	}
	var rows []models.DeviceToken
	if err := p.db.Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		config.Warning("device token lookup failed: %v", err)
		return nil
	}
	tokens := make([]string, 0, len(rows))
	for _, r := range rows {
		tokens = append(tokens, r.Token)
	}
	return tokens
}

// RegisterToken binds a device token to the user. A token already held by
// another user moves over in the same statement, so it is never registered
// to two users at once.
func (p *PushService) RegisterToken(userID, token, platform string) (*models.DeviceToken, error) {
	if token == "" {
		return nil, errs.Validation("token required")
	}

	dev := &models.DeviceToken{UserID: userID, Token: token, Platform: platform}
	err := p.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":    userID,
			"platform":   platform,
			"updated_at": time.Now(),
		}),
	}).Create(dev).Error
	if err != nil {
		return nil, err
	}

	var out models.DeviceToken
	if err := p.db.Where("token = ?", token).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
