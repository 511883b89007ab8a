package fraud

import (
	"context"
	"strings"
)

// Protocol is the response contract requested from the model.
type Protocol int

const (
	// ProtocolJSON asks for a schema-constrained JSON body.
	ProtocolJSON Protocol = iota
	// ProtocolText enables web search and asks for the delimited text layout,
	// since the remote API cannot combine tool use with a strict JSON schema.
	ProtocolText
)

func (p Protocol) String() string {
	if p == ProtocolText {
		return "text"
	}
	return "json"
}

// SelectProtocol picks the response contract for a request.
func SelectProtocol(verifySource bool) Protocol {
	if verifySource {
		return ProtocolText
	}
	return ProtocolJSON
}

// GenerateRequest is one outbound call to the model.
type GenerateRequest struct {
	SystemInstruction string
	Segments          []Segment
	Protocol          Protocol
}

// Reply is the raw model answer plus any grounding citations.
type Reply struct {
	Text    string
	Sources []Source
}

// Generator is the port to a remote generative model.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Reply, error)
}

// Normalize decodes a reply according to the protocol it was requested with.
func Normalize(p Protocol, reply Reply) (Result, error) {
	if strings.TrimSpace(reply.Text) == "" {
		return Result{}, ErrEmptyResponse
	}
	if p == ProtocolText {
		return ParseText(reply.Text, reply.Sources), nil
	}
	return DecodeJSON(reply.Text)
}
