// Package mailer sends treatment-schedule summaries to farmers through the
// remote email service. Delivery is best effort: callers log failures and
// continue.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/logging"
)

// DefaultTimeout is the maximum time to wait for the email service.
const DefaultTimeout = 30 * time.Second

// EmailRequest is the payload for one outbound email.
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type emailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client calls the remote email-dispatch endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a mailer client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: baseURL,
		logger:  logger.Named("mailer"),
	}
}

// Send posts one email to the /send-email endpoint. A non-2xx response or a
// body with success=false is an error.
func (c *Client) Send(ctx context.Context, request *EmailRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	var result emailResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse email response: %w", err)
	}

	if !result.Success {
		if result.Error != "" {
			return fmt.Errorf("email delivery failed: %s", result.Error)
		}
		return fmt.Errorf("email delivery failed")
	}

	c.logger.Info("Email sent",
		zap.String("to", logging.SanitizeEmail(request.To)),
		zap.String("subject", request.Subject))

	return nil
}
