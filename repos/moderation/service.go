package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/agoralive/debate-engine/pkg/apperr"
)

// Service is the HTTP client for the external moderation gate.
type Service struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewService creates a new empty service.
func NewService() *Service {
	return &Service{
		baseURL: os.Getenv("MODERATION_URL"),
		apiKey:  os.Getenv("MODERATION_KEY"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Assess submits argument content to the gate. Transport and decode failures
// come back as dependency errors so callers never mistake an unreachable gate
// for a content veto.
func (s *Service) Assess(ctx context.Context, content, topic string) (Assessment, error) {
	body, err := json.Marshal(AssessRequest{Content: content, Topic: topic})
	if err != nil {
		return Assessment{}, apperr.Wrap(apperr.KindDependency, "failed to encode moderation request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/assess", bytes.NewReader(body))
	if err != nil {
		return Assessment{}, apperr.Wrap(apperr.KindDependency, "failed to create moderation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-secret", s.apiKey)

	response, err := s.httpClient.Do(req)
	if err != nil {
		return Assessment{}, apperr.Wrap(apperr.KindDependency, "moderation gate unreachable", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Assessment{}, apperr.Newf(apperr.KindDependency, "moderation gate returned status %d", response.StatusCode)
	}

	var assessment Assessment
	if err := json.NewDecoder(response.Body).Decode(&assessment); err != nil {
		return Assessment{}, apperr.Wrap(apperr.KindDependency, "failed to parse moderation response", err)
	}
	return assessment, nil
}
