package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"edge-gateway/internal/domain"
)

// Validation failures, surfaced verbatim as wire error codes.
var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidPhone = errors.New("invalid_phone")
)

// Store persists a scrubbed lead record. Persistence is best effort: a
// failing store does not fail the submission.
type Store interface {
	PutLead(ctx context.Context, rec domain.LeadRecord) error
}

// Service validates, persists and fans out lead submissions.
type Service struct {
	store      Store
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
	newSuffix  func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithHTTPClient overrides the webhook HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Service) {
		s.httpClient = httpClient
	}
}

// NewService creates the lead service. store may be nil (no persistence
// bound) and webhookURL may be empty (no fan-out).
func NewService(store Store, webhookURL string, opts ...Option) *Service {
	s := &Service{
		store:      store,
		webhookURL: strings.TrimSpace(webhookURL),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
		newSuffix:  idSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func idSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// CreateInput carries the raw lead plus request metadata.
type CreateInput struct {
	Lead      domain.Lead
	IP        string
	UserAgent string
}

// Create validates the lead, persists it keyed by a generated id and fires
// the webhook. Returns the generated id.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	name := NormalizeName(in.Lead.Name)
	if name == "" {
		return "", ErrInvalidName
	}
	email := NormalizeEmail(in.Lead.Email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	phone := NormalizePhone(in.Lead.Phone)
	if phone == "" {
		return "", ErrInvalidPhone
	}

	transcript := in.Lead.Transcript
	if len(transcript) > maxTranscript {
		transcript = transcript[len(transcript)-maxTranscript:]
	}
	ua := in.UserAgent
	if len(ua) > maxUserAgentLen {
		ua = ua[:maxUserAgentLen]
	}

	now := s.now().UTC()
	rec := domain.LeadRecord{
		ID:         fmt.Sprintf("lead_%d_%s", now.UnixMilli(), s.newSuffix()),
		CreatedAt:  now.Format(time.RFC3339),
		Lang:       domain.NormalizeLang(in.Lead.Lang),
		Name:       name,
		Email:      email,
		Phone:      phone,
		Interests:  Scrub(in.Lead.Interests),
		Details:    Scrub(in.Lead.Details),
		Transcript: transcript,
		IP:         AnonymizeIP(in.IP),
		UserAgent:  ua,
	}

	if s.store != nil {
		if err := s.store.PutLead(ctx, rec); err != nil {
			slog.Warn("lead persist failed", "id", rec.ID, "err", err)
		}
	}
	s.fanOut(ctx, rec)

	return rec.ID, nil
}

// webhookPayload is the fan-out envelope. The anonymized IP is still dropped
// before leaving the process.
type webhookPayload struct {
	Type string         `json:"type"`
	Data webhookLeadDoc `json:"data"`
}

type webhookLeadDoc struct {
	ID         string                   `json:"id"`
	TS         string                   `json:"ts"`
	Lang       string                   `json:"lang"`
	Name       string                   `json:"name"`
	Email      string                   `json:"email"`
	Phone      string                   `json:"phone"`
	Interests  string                   `json:"interests"`
	Details    string                   `json:"details"`
	Transcript []domain.TranscriptEntry `json:"transcript"`
	UserAgent  string                   `json:"ua"`
}

func (s *Service) fanOut(ctx context.Context, rec domain.LeadRecord) {
	if s.webhookURL == "" {
		return
	}
	body, err := json.Marshal(webhookPayload{
		Type: "lead.create",
		Data: webhookLeadDoc{
			ID:         rec.ID,
			TS:         rec.CreatedAt,
			Lang:       rec.Lang,
			Name:       rec.Name,
			Email:      rec.Email,
			Phone:      rec.Phone,
			Interests:  rec.Interests,
			Details:    rec.Details,
			Transcript: rec.Transcript,
			UserAgent:  rec.UserAgent,
		},
	})
	if err != nil {
		slog.Warn("lead webhook marshal failed", "id", rec.ID, "err", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		slog.Warn("lead webhook request failed", "id", rec.ID, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := s.httpClient.Do(req)
	if err != nil {
		slog.Warn("lead webhook delivery failed", "id", rec.ID, "err", err)
		return
	}
	_ = res.Body.Close()
}
