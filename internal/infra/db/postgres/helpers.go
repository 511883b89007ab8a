package postgres

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty reverses stringOrDash on read.
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func encodeResult(r fraud.Result) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeResult(s string) (fraud.Result, error) {
	var r fraud.Result
	if strings.TrimSpace(s) == "" {
		return r, nil
	}
	err := json.Unmarshal([]byte(s), &r)
	return r, err
}

// maxOffset caps OFFSET for out-of-range pages; such pages are simply empty.
const maxOffset = math.MaxInt32

func pageBounds(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if page-1 > maxOffset/pageSize {
		return pageSize, maxOffset
	}
	return pageSize, (page - 1) * pageSize
}
