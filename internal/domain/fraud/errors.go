package fraud

import "errors"

var (
	// ErrEmptyInput means neither text nor an attachment was supplied.
	ErrEmptyInput = errors.New("no content provided for analysis")
	// ErrUnsupportedMediaType means the attachment MIME type is not accepted.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrEmptyResponse covers transport failures and replies without a body.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrMalformedResponse means a JSON-mode body failed to decode into a Result.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrInvalidThresholds means the cut points are not 0 < low < medium < high < 100.
	ErrInvalidThresholds = errors.New("thresholds must be in ascending order (low < medium < high) within 1..99")
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrGroundingUnsupported means the configured model backend cannot run the
// web-search grounded protocol that verify_source asks for.
var ErrGroundingUnsupported = errors.New("source verification is not supported by this model provider")

// ErrInvalidAttachment means the attachment payload could not be decoded.
var ErrInvalidAttachment = errors.New("invalid attachment payload")
