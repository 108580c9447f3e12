package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/driftlab-studio/studio-cms/internal/models"
)

// HTTPStore persists forms through the admin API. It sends the full
// {title, description, slug, fields, settings} document with a bearer token.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore returns a store talking to the admin API at baseURL.
// A nil client gets a default with a request timeout.
func NewHTTPStore(baseURL, token string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPStore{baseURL: baseURL, token: token, client: client}
}

type updateFormRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Slug        string              `json:"slug"`
	Fields      []models.FormField  `json:"fields"`
	Settings    models.FormSettings `json:"settings"`
}

type updateFormResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Update PUTs the form to /api/forms/{id}.
func (s *HTTPStore) Update(ctx context.Context, form models.Form) error {
	payload := updateFormRequest{
		Title:       form.Title,
		Description: form.Description,
		Slug:        form.Slug,
		Fields:      form.Fields,
		Settings:    form.Config(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	url := fmt.Sprintf("%s/api/forms/%s", s.baseURL, form.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("save form: %w", err)
	}
	defer resp.Body.Close()

	var decoded updateFormResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode save response: %w", err)
	}
	if !decoded.Success {
		if decoded.Error != "" {
			return fmt.Errorf("save form: %s", decoded.Error)
		}
		return fmt.Errorf("save form: unexpected status %d", resp.StatusCode)
	}
	return nil
}
