package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

const maxTokens = 2048

// Client implements fraud.Generator and chat.Provider on the OpenAI chat API.
// There is no search tool here, so text-protocol replies carry no sources.
type Client struct {
	*openai.Client
	Model     string
	ChatModel string
}

func NewClient(apiKey, model, chatModel string) *Client {
	if chatModel == "" {
		chatModel = model
	}
	return &Client{Client: openai.NewClient(apiKey), Model: model, ChatModel: chatModel}
}

// Generate runs the JSON protocol only. The chat completions API has no
// search tool here, so the grounded text protocol is refused instead of
// answered without sources.
func (c *Client) Generate(ctx context.Context, req fraud.GenerateRequest) (fraud.Reply, error) {
	if req.Protocol == fraud.ProtocolText {
		return fraud.Reply{}, fraud.ErrGroundingUnsupported
	}
	parts, err := toParts(req.Segments)
	if err != nil {
		return fraud.Reply{}, err
	}
	creq := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: responseFormat(),
	}
	setTokenLimit(&creq)

	resp, err := c.CreateChatCompletion(ctx, creq)
	if err != nil {
		return fraud.Reply{}, classify(fmt.Errorf("failed to create chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return fraud.Reply{}, nil
	}
	return fraud.Reply{Text: resp.Choices[0].Message.Content}, nil
}

// setTokenLimit uses MaxCompletionTokens for reasoning models (o1/o3/o4/gpt-5*).
func setTokenLimit(req *openai.ChatCompletionRequest) {
	m := req.Model
	if strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4") || strings.HasPrefix(m, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
}

func responseFormat() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "fraud_analysis",
			Schema: toDefinition(fraud.ResponseSchema()),
			Strict: false,
		},
	}
}

// toParts maps segments to message parts. Only images can travel as binary.
func toParts(segs []fraud.Segment) ([]openai.ChatMessagePart, error) {
	parts := make([]openai.ChatMessagePart, 0, len(segs))
	for _, s := range segs {
		if s.Kind == fraud.SegmentText {
			parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: s.Text})
			continue
		}
		if !strings.HasPrefix(s.MIMEType, "image/") {
			return nil, fmt.Errorf("%w: %s is not accepted by this provider", fraud.ErrUnsupportedMediaType, s.MIMEType)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + s.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(s.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts, nil
}

func toDefinition(s *fraud.Schema) jsonschema.Definition {
	d := jsonschema.Definition{
		Type:        dataType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if s.Items != nil {
		items := toDefinition(s.Items)
		d.Items = &items
	}
	if len(s.Properties) > 0 {
		d.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, p := range s.Properties {
			d.Properties[name] = toDefinition(p)
		}
	}
	return d
}

func dataType(t fraud.SchemaType) jsonschema.DataType {
	switch t {
	case fraud.SchemaObject:
		return jsonschema.Object
	case fraud.SchemaInteger:
		return jsonschema.Integer
	case fraud.SchemaArray:
		return jsonschema.Array
	default:
		return jsonschema.String
	}
}

// Open starts a conversation. The API is stateless, so turns are kept here.
func (c *Client) Open(_ context.Context, systemInstruction string) (chat.Conversation, error) {
	return &conversation{
		client: c,
		history: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
		},
	}, nil
}

type conversation struct {
	client *Client

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

func (c *conversation) Stream(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		c.mu.Lock()
		defer c.mu.Unlock()

		msgs := append(c.history[:len(c.history):len(c.history)],
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

		stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:    c.client.ChatModel,
			Messages: msgs,
			Stream:   true,
		})
		if err != nil {
			yield("", classify(err))
			return
		}
		defer stream.Close()

		var reply strings.Builder
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				yield("", classify(err))
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			content := resp.Choices[0].Delta.Content
			reply.WriteString(content)
			if !yield(content, nil) {
				return
			}
		}

		c.history = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: reply.String(),
		})
	}
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", fraud.ErrQuotaExceeded, err)
	}
	return err
}
