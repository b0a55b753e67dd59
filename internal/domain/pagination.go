package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// DefaultMaxResults is the page size when none is specified.
const DefaultMaxResults = 1000

// MaxMaxResults is the largest page a client may request.
const MaxMaxResults = 10000

// PageRequest holds row pagination parameters for API listings.
type PageRequest struct {
	MaxResults int
	PageToken  string // opaque token (base64-encoded offset)
}

// ParsePageRequest validates the raw max_results and page_token values.
func ParsePageRequest(maxResults, pageToken string) (PageRequest, error) {
	var p PageRequest
	if s := strings.TrimSpace(maxResults); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return PageRequest{}, ErrValidation("max_results must be a positive integer, got %q", maxResults)
		}
		p.MaxResults = n
	}
	if pageToken != "" {
		if _, ok := decodePageToken(pageToken); !ok {
			return PageRequest{}, ErrValidation("invalid page_token %q", pageToken)
		}
		p.PageToken = pageToken
	}
	return p, nil
}

// Offset decodes the page token. Empty or invalid tokens yield 0.
func (p PageRequest) Offset() int {
	offset, _ := decodePageToken(p.PageToken)
	return offset
}

// Limit returns the effective page size, clamped to [1, MaxMaxResults].
func (p PageRequest) Limit() int {
	if p.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return min(p.MaxResults, MaxMaxResults)
}

// EncodePageToken creates an opaque, URL-safe page token from an offset.
// Returns empty string if offset is 0 or negative.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// NextPageToken returns the token for the page after [offset, offset+limit),
// or "" when total rows are exhausted.
func NextPageToken(offset, limit, total int) string {
	next := offset + limit
	if next >= total {
		return ""
	}
	return EncodePageToken(next)
}

func decodePageToken(token string) (int, bool) {
	if token == "" {
		return 0, true
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, false
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return 0, false
	}
	return offset, true
}
