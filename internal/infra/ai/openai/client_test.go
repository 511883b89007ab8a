package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: "gpt-4o-mini", ChatModel: "gpt-4o-mini"}
}

func TestToParts(t *testing.T) {
	parts, err := toParts([]fraud.Segment{
		fraud.BinarySegment([]byte("img"), "image/png"),
		fraud.TextSegment("describe"),
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, parts[0].Type)
	assert.Equal(t, "data:image/png;base64,aW1n", parts[0].ImageURL.URL)
	assert.Equal(t, "describe", parts[1].Text)

	_, err = toParts([]fraud.Segment{fraud.BinarySegment([]byte("%PDF"), "application/pdf")})
	assert.ErrorIs(t, err, fraud.ErrUnsupportedMediaType)
}

func TestToDefinition(t *testing.T) {
	d := toDefinition(fraud.ResponseSchema())
	assert.Equal(t, jsonschema.Object, d.Type)
	assert.Equal(t, jsonschema.Integer, d.Properties["riskScore"].Type)
	assert.Len(t, d.Properties["verdict"].Enum, 5)
	require.NotNil(t, d.Properties["redFlags"].Items)
	assert.Equal(t, []string{"flag", "explanation"}, d.Properties["redFlags"].Items.Required)
	assert.Contains(t, d.Required, "recommendations")
}

func TestSetTokenLimit(t *testing.T) {
	r := openai.ChatCompletionRequest{Model: "o3-mini"}
	setTokenLimit(&r)
	assert.Equal(t, maxTokens, r.MaxCompletionTokens)
	assert.Zero(t, r.MaxTokens)

	r = openai.ChatCompletionRequest{Model: "gpt-4o"}
	setTokenLimit(&r)
	assert.Equal(t, maxTokens, r.MaxTokens)
}

func TestGenerate_JSONProtocolSendsSchema(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"riskScore\":5}"},"finish_reason":"stop"}]}`)
	})

	reply, err := c.Generate(context.Background(), fraud.GenerateRequest{
		SystemInstruction: "sys",
		Segments:          []fraud.Segment{fraud.TextSegment("hi")},
		Protocol:          fraud.ProtocolJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"riskScore":5}`, reply.Text)
	assert.Nil(t, reply.Sources)

	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONSchema, got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "sys", got.Messages[0].Content)
}

func TestGenerate_TextProtocolIsRefused(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"RISK_SCORE: 10"}}]}`)
	})

	_, err := c.Generate(context.Background(), fraud.GenerateRequest{
		Segments: []fraud.Segment{fraud.TextSegment("hi")},
		Protocol: fraud.ProtocolText,
	})
	assert.ErrorIs(t, err, fraud.ErrGroundingUnsupported)
	assert.Zero(t, calls)
}

func TestGenerate_QuotaError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	})

	_, err := c.Generate(context.Background(), fraud.GenerateRequest{Segments: []fraud.Segment{fraud.TextSegment("hi")}})
	assert.ErrorIs(t, err, fraud.ErrQuotaExceeded)
}

func TestConversation_StreamsAndKeepsHistory(t *testing.T) {
	var requests []openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range []string{"Stay ", "safe."} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", frag)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	conv, err := c.Open(context.Background(), "be helpful")
	require.NoError(t, err)

	var frags []string
	for frag, err := range conv.Stream(context.Background(), "tips?") {
		require.NoError(t, err)
		frags = append(frags, frag)
	}
	assert.Equal(t, []string{"Stay ", "safe."}, frags)

	for _, err := range conv.Stream(context.Background(), "more?") {
		require.NoError(t, err)
	}

	require.Len(t, requests, 2)
	second := requests[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, second[0].Role)
	assert.Equal(t, "tips?", second[1].Content)
	assert.Equal(t, "Stay safe.", second[2].Content)
	assert.Equal(t, "more?", second[3].Content)
}

func TestConversation_StreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom"}}`)
	})

	conv, err := c.Open(context.Background(), "sys")
	require.NoError(t, err)

	var errs int
	for _, err := range conv.Stream(context.Background(), "hi") {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}
