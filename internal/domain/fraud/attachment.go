package fraud

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
)

// AttachmentKind records how an attachment arrived. It is decided once at
// ingestion so nothing downstream has to guess at prefixes.
type AttachmentKind string

const (
	KindDataURI    AttachmentKind = "data_uri"
	KindRawEncoded AttachmentKind = "raw_encoded"
	KindBytes      AttachmentKind = "bytes"
)

// DefaultMIMEType is assumed when a caller sends a payload without a type.
const DefaultMIMEType = "image/png"

// Attachment holds decoded attachment bytes and their MIME type.
type Attachment struct {
	Kind     AttachmentKind
	Data     []byte
	MIMEType string
}

// ParseAttachment ingests a string payload. A "data:" prefix marks a data URI
// whose header may supply the MIME type; anything else is bare base64, except
// text/plain which carries already-extracted document text verbatim.
func ParseAttachment(payload, mimeType string) (*Attachment, error) {
	mimeType = NormalizeMIMEType(mimeType)

	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: data uri without payload", ErrInvalidAttachment)
		}
		header, body := payload[len("data:"):comma], payload[comma+1:]
		isBase64 := strings.HasSuffix(header, ";base64")
		if mimeType == "" {
			mimeType = NormalizeMIMEType(strings.TrimSuffix(header, ";base64"))
		}
		data := []byte(body)
		if isBase64 {
			decoded, err := decodeBase64(body)
			if err != nil {
				return nil, err
			}
			data = decoded
		}
		return &Attachment{Kind: KindDataURI, Data: data, MIMEType: orDefault(mimeType)}, nil
	}

	if mimeType == "text/plain" {
		return NewBytesAttachment([]byte(payload), mimeType), nil
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return &Attachment{Kind: KindRawEncoded, Data: data, MIMEType: orDefault(mimeType)}, nil
}

// NewBytesAttachment wraps bytes that are already decoded, e.g. a multipart
// upload or text extracted from a word-processor document.
func NewBytesAttachment(data []byte, mimeType string) *Attachment {
	return &Attachment{Kind: KindBytes, Data: data, MIMEType: orDefault(NormalizeMIMEType(mimeType))}
}

// NormalizeMIMEType lowercases the media type and drops any parameters.
func NormalizeMIMEType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(mimeType)
}

func orDefault(mimeType string) string {
	if mimeType == "" {
		return DefaultMIMEType
	}
	return mimeType
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}
	return b, nil
}
