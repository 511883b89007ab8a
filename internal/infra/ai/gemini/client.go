package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

// Client implements fraud.Generator and chat.Provider on the Gemini API.
type Client struct {
	cli       *genai.Client
	model     string
	chatModel string
}

// New creates a Gemini client. chatModel falls back to model when empty.
func New(ctx context.Context, apiKey, model, chatModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	if chatModel == "" {
		chatModel = model
	}
	return &Client{cli: cli, model: model, chatModel: chatModel}, nil
}

// Generate sends one multimodal request. JSON protocol constrains the reply
// with the response schema; text protocol enables the search tool instead.
func (c *Client) Generate(ctx context.Context, req fraud.GenerateRequest) (fraud.Reply, error) {
	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(toParts(req.Segments), genai.RoleUser)},
		generateConfig(req),
	)
	if err != nil {
		return fraud.Reply{}, classify(err)
	}
	return fraud.Reply{Text: resp.Text(), Sources: sourcesOf(resp)}, nil
}

func generateConfig(req fraud.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
	}
	if req.Protocol == fraud.ProtocolText {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		return cfg
	}
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = toSchema(fraud.ResponseSchema())
	return cfg
}

// Open starts a chat fixed to systemInstruction. The SDK chat keeps history.
func (c *Client) Open(ctx context.Context, systemInstruction string) (chat.Conversation, error) {
	ch, err := c.cli.Chats.Create(ctx, c.chatModel, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: create chat: %w", err)
	}
	return &conversation{chat: ch}, nil
}

type conversation struct {
	chat *genai.Chat
}

func (c *conversation) Stream(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", classify(err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}

func toParts(segs []fraud.Segment) []*genai.Part {
	parts := make([]*genai.Part, 0, len(segs))
	for _, s := range segs {
		if s.Kind == fraud.SegmentBinary {
			parts = append(parts, genai.NewPartFromBytes(s.Data, s.MIMEType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(s.Text))
	}
	return parts
}

func toSchema(s *fraud.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             schemaType(s.Type),
		Description:      s.Description,
		Enum:             s.Enum,
		Items:            toSchema(s.Items),
		PropertyOrdering: s.Order,
		Required:         s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
	}
	return out
}

func schemaType(t fraud.SchemaType) genai.Type {
	switch t {
	case fraud.SchemaObject:
		return genai.TypeObject
	case fraud.SchemaInteger:
		return genai.TypeInteger
	case fraud.SchemaArray:
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}

// sourcesOf collects web citations of the first candidate. nil when there are none.
func sourcesOf(resp *genai.GenerateContentResponse) []fraud.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []fraud.Source
	for _, ch := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if ch == nil || ch.Web == nil || ch.Web.URI == "" {
			continue
		}
		out = append(out, fraud.Source{URI: ch.Web.URI, Title: ch.Web.Title})
	}
	return out
}

// classify tags quota errors with fraud.ErrQuotaExceeded, keeping the cause.
func classify(err error) error {
	if isQuota(err) {
		return fmt.Errorf("%w: %w", fraud.ErrQuotaExceeded, err)
	}
	return err
}

func isQuota(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429")
}
