package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type SMSConfig struct {
	APIURL   string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

type smsGateway struct {
	cfg    SMSConfig
	client *http.Client
	logger *zap.Logger
}

// NewSMSGateway builds a Gateway over the provider's JSON HTTP API.
func NewSMSGateway(cfg SMSConfig, logger ...*zap.Logger) Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	l := zap.L().Named("notification.sms")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sms")
	}
	return &smsGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: l,
	}
}

type smsPayload struct {
	Sender     string   `json:"sender"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

func (g *smsGateway) SendText(ctx context.Context, phoneNumber, message string) error {
	body, err := json.Marshal(smsPayload{
		Sender:     g.cfg.SenderID,
		Message:    message,
		Recipients: []string{phoneNumber},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("sms send failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("sms provider rejected message",
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	g.logger.Info("sms sent")
	return nil
}
