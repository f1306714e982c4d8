package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edge-gateway/internal/retrieval"
)

// Gemini calls the generate-content API: a single user turn carrying both
// system and user text, no role array, and the key passed as a query
// parameter rather than a header.
type Gemini struct {
	name       string
	desc       Descriptor
	keys       *keyResolver
	httpClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiOption customizes a Gemini caller.
type GeminiOption func(*Gemini)

// WithGeminiHTTPClient overrides the HTTP client used for generate calls.
func WithGeminiHTTPClient(httpClient *http.Client) GeminiOption {
	return func(g *Gemini) {
		g.httpClient = httpClient
	}
}

// NewGemini creates the generate-content caller.
func NewGemini(desc Descriptor, getter SecretGetter, keyParamName string, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		name:       desc.Name,
		desc:       desc,
		keys:       newKeyResolver(desc.APIKey, getter, keyParamName),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) Name() string { return g.name }

func (g *Gemini) Configured() bool {
	return g.desc.BaseURL != "" && g.desc.ModelID != "" && g.keys.configured()
}

func (g *Gemini) Call(ctx context.Context, req Request) (Result, error) {
	key, err := g.keys.resolve(ctx)
	if err != nil {
		return Result{}, err
	}

	base := strings.TrimRight(g.desc.BaseURL, "/")
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", base, url.PathEscape(g.desc.ModelID))
	callURL := endpoint + "?key=" + url.QueryEscape(key)

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: fmt.Sprintf("SYSTEM:\n%s\n\nUSER:\n%s", req.SystemText, req.UserText)}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: marshal request: %w", g.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, callURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: create request: %w", g.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: request failed: %w", g.name, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		// endpoint, not callURL: the key must never appear in an error.
		return Result{}, &HTTPStatusError{StatusCode: res.StatusCode, URL: endpoint, Body: string(buf)}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: read response body: %w", g.name, err)
	}
	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("provider %s: decode response: %w", g.name, err)
	}

	var sb strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, p := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := sb.String()

	// This API reports no usage; the heuristic keeps the ledger consistent.
	used := retrieval.ApproxTokens(req.SystemText, req.UserText, text)
	return Result{Text: text, Used: used}, nil
}
