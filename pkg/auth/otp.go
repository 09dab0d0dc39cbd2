package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"resume-review-backend/internal/domain"
)

// OTPClient triggers Supabase passwordless email sign-in.
type OTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ domain.MagicLinkSender = (*OTPClient)(nil)

func NewOTPClient(supabaseURL, apiKey string) *OTPClient {
	return &OTPClient{
		baseURL: supabaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (o *OTPClient) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	body, err := json.Marshal(map[string]interface{}{
		"email":       email,
		"create_user": true,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/auth/v1/otp", o.baseURL)
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("otp request failed: status=%d body=%s", resp.StatusCode, string(msg))
	}
	return nil
}
