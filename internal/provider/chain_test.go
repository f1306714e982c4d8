package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"edge-gateway/internal/budget"
	"edge-gateway/internal/domain"
)

type fakeCaller struct {
	name       string
	configured bool
	res        Result
	err        error
	calls      int
}

func (f *fakeCaller) Name() string     { return f.name }
func (f *fakeCaller) Configured() bool { return f.configured }

func (f *fakeCaller) Call(_ context.Context, _ Request) (Result, error) {
	f.calls++
	return f.res, f.err
}

func TestParseChainOrder(t *testing.T) {
	require.Equal(t, DefaultChainOrder, ParseChainOrder(""))
	require.Equal(t, DefaultChainOrder, ParseChainOrder(" , ,"))
	require.Equal(t, []string{"grok", "oss"}, ParseChainOrder("grok, oss"))
}

func TestNewChain_NilLedger(t *testing.T) {
	_, err := NewChain(true, nil, nil, nil)
	require.Error(t, err)
}

func TestRun_Disabled(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, res: Result{Text: "hi", Used: 10}}
	c, err := NewChain(false, nil, map[string]Caller{"oss": oss}, budget.NewLedger())
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, NameNone, out.Provider)
	require.Zero(t, oss.calls)
}

func TestRun_FirstSuccessStopsChain(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, res: Result{Text: "from oss", Used: 120}}
	grok := &fakeCaller{name: "grok", configured: true, res: Result{Text: "from grok", Used: 80}}
	led := budget.NewLedger()
	c, err := NewChain(true, []string{"oss", "grok"}, map[string]Caller{"oss": oss, "grok": grok}, led)
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, "oss", out.Provider)
	require.Equal(t, "from oss", out.Text)
	require.Equal(t, 120, out.Used)
	require.Zero(t, grok.calls)
	require.Equal(t, 120, led.ProviderSpent("s1", "oss"))
	require.Equal(t, 120, led.SessionTotal("s1"))
}

func TestRun_SkipsUnconfiguredAndUnknown(t *testing.T) {
	grok := &fakeCaller{name: "grok", configured: false}
	gemini := &fakeCaller{name: "gemini", configured: true, res: Result{Text: "ok", Used: 5}}
	c, err := NewChain(true, []string{"oss", "grok", "gemini"},
		map[string]Caller{"grok": grok, "gemini": gemini}, budget.NewLedger())
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, "gemini", out.Provider)
	require.Zero(t, grok.calls)
}

func TestRun_ErrorAdvancesChain(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, err: errors.New("upstream 503")}
	grok := &fakeCaller{name: "grok", configured: true, res: Result{Text: "rescued", Used: 30}}
	c, err := NewChain(true, []string{"oss", "grok"}, map[string]Caller{"oss": oss, "grok": grok}, budget.NewLedger())
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, 1, oss.calls)
	require.Equal(t, "grok", out.Provider)
	require.Equal(t, "rescued", out.Text)
}

func TestRun_AllFail(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, err: errors.New("boom")}
	c, err := NewChain(true, []string{"oss"}, map[string]Caller{"oss": oss}, budget.NewLedger())
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, NameNone, out.Provider)
	require.Empty(t, out.Text)
	require.Zero(t, out.Used)
}

func TestRun_SoftCappedProviderSkipped(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, res: Result{Text: "never", Used: 1}}
	grok := &fakeCaller{name: "grok", configured: true, res: Result{Text: "took over", Used: 40}}
	led := budget.NewLedger()
	led.Charge("s1", "oss", budget.ProviderSoftCap)

	c, err := NewChain(true, []string{"oss", "grok"}, map[string]Caller{"oss": oss, "grok": grok}, led)
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Zero(t, oss.calls)
	require.Equal(t, "grok", out.Provider)
}

func TestRun_SessionExhaustedStopsHard(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, res: Result{Text: "never", Used: 1}}
	led := budget.NewLedger()
	led.Charge("s1", "other", budget.SessionHardCap)

	c, err := NewChain(true, []string{"oss"}, map[string]Caller{"oss": oss}, led)
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Zero(t, oss.calls)
	require.Equal(t, NameNone, out.Provider)
}

func TestRun_ChargeClippedNearHardCap(t *testing.T) {
	oss := &fakeCaller{name: "oss", configured: true, res: Result{Text: "big answer", Used: 500}}
	led := budget.NewLedger()
	led.Charge("s1", "other", budget.SessionHardCap-100)

	c, err := NewChain(true, []string{"oss"}, map[string]Caller{"oss": oss}, led)
	require.NoError(t, err)

	out := c.Run(context.Background(), "s1", "en", nil, "hello")
	require.Equal(t, "oss", out.Provider)
	require.Equal(t, 100, out.Used, "charge is clipped to the session allowance")
	require.Equal(t, budget.SessionHardCap, led.SessionTotal("s1"))
}

func TestRun_RequestCarriesSystemAndUser(t *testing.T) {
	var got Request
	capture := &captureCaller{fakeCaller: fakeCaller{name: "oss", configured: true, res: Result{Text: "ok", Used: 1}}, got: &got}
	c, err := NewChain(true, []string{"oss"}, map[string]Caller{"oss": capture}, budget.NewLedger())
	require.NoError(t, err)

	strong := []domain.ScoredChunk{{ID: "a", Text: "fact", Score: 1}}
	c.Run(context.Background(), "s1", "es", strong, "¿precios?")

	require.Contains(t, got.SystemText, "Responde SOLO con el contexto")
	require.Contains(t, got.SystemText, "[#a] fact")
	require.Equal(t, "¿precios?", got.UserText)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "user", got.Messages[1].Role)
}

type captureCaller struct {
	fakeCaller
	got *Request
}

func (c *captureCaller) Call(ctx context.Context, req Request) (Result, error) {
	*c.got = req
	return c.fakeCaller.Call(ctx, req)
}
