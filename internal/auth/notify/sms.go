package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultSMSAPIURL is the smsadvert.ro message endpoint.
const DefaultSMSAPIURL = "https://www.smsadvert.ro/api/sms/"

// SMSAdvertSender delivers verification codes through the smsadvert.ro
// HTTP API.
type SMSAdvertSender struct {
	apiURL string
	token  string
	client *http.Client
}

var _ SMSSender = (*SMSAdvertSender)(nil)

type smsAdvertRequest struct {
	Phone            string `json:"phone"`
	ShortTextMessage string `json:"shortTextMessage"`
	SendAsShort      bool   `json:"sendAsShort"`
}

func NewSMSAdvertSender(token string) *SMSAdvertSender {
	return &SMSAdvertSender{
		apiURL: DefaultSMSAPIURL,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewSMSAdvertSenderWithClient is used by tests to point the sender at a
// local server.
func NewSMSAdvertSenderWithClient(apiURL, token string, client *http.Client) *SMSAdvertSender {
	return &SMSAdvertSender{apiURL: apiURL, token: token, client: client}
}

func (s *SMSAdvertSender) SendVerificationSMS(ctx context.Context, phone, givenName, code string) error {
	payload, err := json.Marshal(smsAdvertRequest{
		Phone:            phone,
		ShortTextMessage: fmt.Sprintf("Salut, %s! Codul tău de verificare este: %s", givenName, code),
		SendAsShort:      true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms to %s: %w", phone, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send sms to %s: gateway returned %d: %s", phone, resp.StatusCode, body)
	}
	return nil
}
