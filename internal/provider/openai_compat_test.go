package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"edge-gateway/internal/retrieval"
)

func compatDescriptor(name, baseURL string) Descriptor {
	return Descriptor{Name: name, BaseURL: baseURL, ModelID: "test-model", APIKey: "sk-test"}
}

func TestOpenAICompat_Configured(t *testing.T) {
	require.True(t, NewOpenAICompat(compatDescriptor("oss", "http://example"), nil, "").Configured())

	noURL := Descriptor{Name: "oss", ModelID: "m", APIKey: "k"}
	require.False(t, NewOpenAICompat(noURL, nil, "").Configured())

	noKey := Descriptor{Name: "oss", BaseURL: "http://example", ModelID: "m"}
	require.False(t, NewOpenAICompat(noKey, nil, "").Configured())
}

func TestOpenAICompat_Call(t *testing.T) {
	var gotAuth, gotModel string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel = body.Model
		require.Len(t, body.Messages, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "the answer"}},
			},
			"usage": map[string]any{"total_tokens": 42},
		})
	}))
	defer ts.Close()

	c := NewOpenAICompat(compatDescriptor("oss", ts.URL+"/v1"), nil, "",
		WithCompatHTTPClient(ts.Client()))

	res, err := c.Call(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "the answer", res.Text)
	require.Equal(t, 42, res.Used)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "test-model", gotModel)
}

func TestOpenAICompat_Call_NoUsageFallsBackToHeuristic(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer ts.Close()

	c := NewOpenAICompat(compatDescriptor("oss", ts.URL+"/v1"), nil, "",
		WithCompatHTTPClient(ts.Client()))

	req := Request{Messages: []Message{{Role: "user", Content: "hello"}}}
	res, err := c.Call(context.Background(), req)
	require.NoError(t, err)

	raw, _ := json.Marshal(req.Messages)
	require.Equal(t, retrieval.ApproxTokens(string(raw), "ok"), res.Used)
}

func TestOpenAICompat_Call_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewOpenAICompat(compatDescriptor("oss", ts.URL+"/v1"), nil, "",
		WithCompatHTTPClient(ts.Client()))

	_, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)
}
