// Package usecase orchestrates the gateway request pipeline: guard checks,
// grounding retrieval, budget accounting, provider fallback and the shape of
// the streamed result. Everything downstream of the guard produces some
// answer; only guard failures fail the call.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"edge-gateway/internal/budget"
	"edge-gateway/internal/domain"
	"edge-gateway/internal/guard"
	"edge-gateway/internal/provider"
	"edge-gateway/internal/retrieval"
	"edge-gateway/internal/stream"
)

const defaultPackPath = "/packs/site-pack.json"

// PackLoader fetches and caches knowledge packs.
type PackLoader interface {
	Load(ctx context.Context, url string) (*domain.Pack, error)
}

// ChainRunner executes the provider fallback chain for one turn.
type ChainRunner interface {
	Run(ctx context.Context, sessionID, lang string, strong []domain.ScoredChunk, userMsg string) provider.Outcome
}

// BudgetLedger is the session token ledger the pipeline charges and reads.
type BudgetLedger interface {
	Charge(sessionID, provider string, requested int) int
	ProviderSpent(sessionID, provider string) int
	SessionTotal(sessionID string) int
}

// AuthChecker runs the per-turn security checks shared with the lead route.
type AuthChecker interface {
	CheckAuth(csrfHeader, csrfBody, honeypot string) *guard.Verdict
}

// ChatService runs the chat turn pipeline.
type ChatService struct {
	auth           AuthChecker
	packs          PackLoader
	ledger         BudgetLedger
	chain          ChainRunner
	defaultPackURL string
	deployOrigin   string
}

// ChatInput is one inbound chat turn plus its out-of-band CSRF header.
type ChatInput struct {
	Request    domain.TurnRequest
	CSRFHeader string
}

// ChatOutput is the answer text and the metadata destined for headers. The
// handler encodes Text as the SSE body.
type ChatOutput struct {
	Text string
	Meta stream.Meta
}

// NewChatService wires the pipeline. defaultPackURL may be empty when
// deployOrigin is set; the conventional pack path is derived from it.
func NewChatService(auth AuthChecker, packs PackLoader, ledger BudgetLedger, chain ChainRunner, defaultPackURL, deployOrigin string) (*ChatService, error) {
	if auth == nil {
		return nil, errors.New("usecase: auth checker must not be nil")
	}
	if packs == nil {
		return nil, errors.New("usecase: pack loader must not be nil")
	}
	if ledger == nil {
		return nil, errors.New("usecase: budget ledger must not be nil")
	}
	if chain == nil {
		return nil, errors.New("usecase: chain runner must not be nil")
	}
	defaultPackURL = strings.TrimSpace(defaultPackURL)
	deployOrigin = strings.TrimRight(strings.TrimSpace(deployOrigin), "/")
	if defaultPackURL == "" && deployOrigin != "" {
		defaultPackURL = deployOrigin + defaultPackPath
	}
	return &ChatService{
		auth:           auth,
		packs:          packs,
		ledger:         ledger,
		chain:          chain,
		defaultPackURL: defaultPackURL,
		deployOrigin:   deployOrigin,
	}, nil
}

// Chat decides what text (if any) is returned for a single chat turn, and at
// what cost: auth → policy → ground → budget → fallback chain.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	req := in.Request
	if v := s.auth.CheckAuth(in.CSRFHeader, req.CSRF, req.Honeypot); v != nil {
		return ChatOutput{}, ErrorForVerdict(v)
	}

	lang := domain.NormalizeLang(req.Lang)
	userMsg := req.LatestUserMessage()

	// Policy match bypasses retrieval and providers entirely and costs no
	// budget. The refusal streams as a normal 200 answer.
	if guard.ViolatesPolicy(userMsg) {
		return ChatOutput{
			Text: refusalMessage(lang),
			Meta: stream.Meta{Provider: ProviderPolicy},
		}, nil
	}

	packURL := s.resolvePackURL(req.PackURL)
	packStatus := stream.PackStatusOK
	var pack *domain.Pack
	if packURL == "" {
		packStatus = stream.PackStatusUnavailable
	} else if p, err := s.packs.Load(ctx, packURL); err != nil {
		slog.Warn("pack load failed, grounding degrades to empty", "url", packURL, "err", err)
		packStatus = stream.PackStatusUnavailable
	} else {
		pack = p
	}

	strong := retrieval.TopChunks(pack, userMsg, lang)
	sid := budget.SessionID(req.CSRF)

	if retrieval.Sufficient(strong) {
		answer := retrieval.ComposeExtractive(strong)
		charged := s.ledger.Charge(sid, ProviderExtractive, retrieval.ApproxTokens(userMsg, answer))
		return ChatOutput{
			Text: answer,
			Meta: stream.Meta{
				Provider:       ProviderExtractive,
				TokensThisCall: charged,
				ProviderTotal:  s.ledger.ProviderSpent(sid, ProviderExtractive),
				SessionTotal:   s.ledger.SessionTotal(sid),
				PackStatus:     packStatus,
				PackURL:        packURL,
				Notice:         NoticeProvidersNotUsed,
			},
		}, nil
	}

	out := s.chain.Run(ctx, sid, lang, strong, userMsg)
	if out.Provider == provider.NameNone || out.Text == "" {
		fb := fallbackMessage(lang, packStatus == stream.PackStatusOK)
		return ChatOutput{
			Text: fb,
			Meta: stream.Meta{
				Provider:       provider.NameNone,
				TokensThisCall: retrieval.ApproxTokens(userMsg, fb),
				SessionTotal:   s.ledger.SessionTotal(sid),
				PackStatus:     packStatus,
				PackURL:        packURL,
			},
		}, nil
	}

	notice := ""
	providerTotal := s.ledger.ProviderSpent(sid, out.Provider)
	if providerTotal >= budget.ProviderSoftCap {
		notice = NoticeSoftCapReached
	}
	return ChatOutput{
		Text: out.Text,
		Meta: stream.Meta{
			Provider:       out.Provider,
			TokensThisCall: out.Used,
			ProviderTotal:  providerTotal,
			SessionTotal:   s.ledger.SessionTotal(sid),
			PackStatus:     packStatus,
			PackURL:        packURL,
			Notice:         notice,
		},
	}, nil
}

// resolvePackURL accepts a request-supplied pack URL only when it resolves
// to the deployment origin; anything else falls back to the configured
// default. This keeps the gateway from proxying arbitrary hosts.
func (s *ChatService) resolvePackURL(requested string) string {
	packURL := s.defaultPackURL
	requested = strings.TrimSpace(requested)
	if requested == "" || s.deployOrigin == "" {
		return packURL
	}
	base, err := url.Parse(s.deployOrigin)
	if err != nil {
		return packURL
	}
	ref, err := url.Parse(requested)
	if err != nil {
		return packURL
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme == base.Scheme && resolved.Host == base.Host {
		return resolved.String()
	}
	return packURL
}
