// Package handler adapts API Gateway proxy events to the gateway pipeline:
// routing, CORS, guard-verdict-to-HTTP mapping and SSE response assembly.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"edge-gateway/internal/domain"
	"edge-gateway/internal/guard"
	"edge-gateway/internal/lead"
	"edge-gateway/internal/usecase"
)

const (
	pathChat   = "/api/chat"
	pathLead   = "/api/lead"
	pathHealth = "/healthz"
)

// ChatUseCase runs one chat turn.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// LeadUseCase validates and stores one lead submission.
type LeadUseCase interface {
	Create(ctx context.Context, in lead.CreateInput) (string, error)
}

// Encoder turns answer text into the SSE body. Injected so tests can assert
// framing separately from routing.
type Encoder func(text string) string

// Handler serves the gateway's two API routes plus health.
type Handler struct {
	chat          ChatUseCase
	leads         LeadUseCase
	guard         *guard.Checker
	encode        Encoder
	allowedOrigin string
}

// NewHandler wires the handler. allowedOrigin may be empty to disable the
// origin allowlist (CORS headers are then never emitted).
func NewHandler(chat ChatUseCase, leads LeadUseCase, g *guard.Checker, encode Encoder, allowedOrigin string) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if leads == nil {
		return nil, errors.New("handler: lead use case must not be nil")
	}
	if g == nil {
		return nil, errors.New("handler: guard checker must not be nil")
	}
	if encode == nil {
		return nil, errors.New("handler: encoder must not be nil")
	}
	return &Handler{
		chat:          chat,
		leads:         leads,
		guard:         g,
		encode:        encode,
		allowedOrigin: strings.TrimSpace(allowedOrigin),
	}, nil
}

// leadRequest is the JSON body accepted by /api/lead.
type leadRequest struct {
	CSRF     string      `json:"csrf"`
	Honeypot string      `json:"hp"`
	Lead     domain.Lead `json:"lead"`
}

// Handle is the Lambda entrypoint for every route.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	origin := header(event, "origin")
	cors := h.corsHeaders(origin)

	if event.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: cors}, nil
	}
	if event.Path == pathHealth {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if event.Path != pathChat && event.Path != pathLead {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound, Body: "Not found"}, nil
	}

	if h.allowedOrigin != "" && origin != "" && origin != h.allowedOrigin {
		return jsonError(http.StatusForbidden, "origin_not_allowed", cors), nil
	}
	if event.HTTPMethod != http.MethodPost {
		hint := "POST JSON to /api/chat for SSE stream"
		if event.Path == pathLead {
			hint = "POST JSON to /api/lead to store a lead"
		}
		return jsonBody(http.StatusOK, map[string]any{"ok": true, "hint": hint}, cors), nil
	}

	ip := clientIP(event)
	if v := h.guard.CheckTransport(header(event, "content-type"), contentLength(event), ip); v != nil {
		return verdictResponse(v, cors), nil
	}

	raw := []byte(event.Body)
	if event.Path == pathLead {
		return h.handleLead(ctx, event, raw, ip, cors)
	}
	return h.handleChat(ctx, event, raw, cors)
}

func (h *Handler) handleChat(ctx context.Context, event events.APIGatewayProxyRequest, raw []byte, cors map[string]string) (events.APIGatewayProxyResponse, error) {
	var req domain.TurnRequest
	if v := h.guard.DecodeBody(raw, &req); v != nil {
		return verdictResponse(v, cors), nil
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{
		Request:    req,
		CSRFHeader: header(event, "x-csrf"),
	})
	if err != nil {
		return errorResponse(err, cors), nil
	}

	headers := make(map[string]string, len(cors)+8)
	for k, v := range cors {
		headers[k] = v
	}
	for k, v := range out.Meta.Headers() {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       h.encode(out.Text),
	}, nil
}

func (h *Handler) handleLead(ctx context.Context, event events.APIGatewayProxyRequest, raw []byte, ip string, cors map[string]string) (events.APIGatewayProxyResponse, error) {
	var req leadRequest
	if v := h.guard.DecodeBody(raw, &req); v != nil {
		return verdictResponse(v, cors), nil
	}
	if v := h.guard.CheckAuth(header(event, "x-csrf"), req.CSRF, req.Honeypot); v != nil {
		return verdictResponse(v, cors), nil
	}

	id, err := h.leads.Create(ctx, lead.CreateInput{
		Lead:      req.Lead,
		IP:        ip,
		UserAgent: header(event, "user-agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, lead.ErrInvalidName),
			errors.Is(err, lead.ErrInvalidEmail),
			errors.Is(err, lead.ErrInvalidPhone):
			return jsonError(http.StatusBadRequest, err.Error(), cors), nil
		default:
			return jsonError(http.StatusInternalServerError, "internal_error", cors), nil
		}
	}
	return jsonBody(http.StatusOK, map[string]any{"ok": true, "id": id}, cors), nil
}

// corsHeaders mirrors the origin back only when it matches the allowlist.
func (h *Handler) corsHeaders(origin string) map[string]string {
	if h.allowedOrigin == "" || origin == "" || origin != h.allowedOrigin {
		return map[string]string{}
	}
	return map[string]string{
		"Access-Control-Allow-Origin":      origin,
		"Vary":                             "Origin",
		"Access-Control-Allow-Credentials": "true",
		"Access-Control-Allow-Headers":     "Content-Type, X-CSRF, X-Nonce, Authorization",
		"Access-Control-Allow-Methods":     "POST, GET, OPTIONS",
	}
}

// clientIP picks the client address from the usual proxy headers, falling
// back to the API Gateway source IP.
func clientIP(event events.APIGatewayProxyRequest) string {
	if fwd := header(event, "x-forwarded-for"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if ip := header(event, "cf-connecting-ip"); ip != "" {
		return ip
	}
	if ip := header(event, "x-real-ip"); ip != "" {
		return ip
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		return ip
	}
	return "0.0.0.0"
}

func contentLength(event events.APIGatewayProxyRequest) int64 {
	v := header(event, "content-length")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// header does a case-insensitive lookup; proxy events do not canonicalize
// header names.
func header(event events.APIGatewayProxyRequest, name string) string {
	for k, v := range event.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func verdictResponse(v *guard.Verdict, cors map[string]string) events.APIGatewayProxyResponse {
	return errorResponse(usecase.ErrorForVerdict(v), cors)
}

func errorResponse(err error, cors map[string]string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return jsonError(http.StatusInternalServerError, "internal_error", cors)
	}
	return jsonError(statusForCode(ucErr.Code), ucErr.Reason, cors)
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case usecase.ErrorUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorForbidden:
		return http.StatusForbidden
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(status int, code string, cors map[string]string) events.APIGatewayProxyResponse {
	return jsonBody(status, map[string]any{"error": code}, cors)
}

func jsonBody(status int, payload any, cors map[string]string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(cors)+1)
	for k, v := range cors {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json; charset=utf-8"
	body, _ := json.Marshal(payload)
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}
