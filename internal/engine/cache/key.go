package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingServer is returned by GenerateKey without a server.
var ErrMissingServer = errors.New("cache key needs a server")

// KeyParams identifies one list query against one server.
type KeyParams struct {
	Server    string `json:"server"`
	Limit     int    `json:"limit"`
	Search    string `json:"search,omitempty"`
	SortKey   string `json:"sort_key,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

func (p KeyParams) normalized() KeyParams {
	p.Server = strings.TrimRight(strings.ToLower(strings.TrimSpace(p.Server)), "/")
	p.Search = strings.TrimSpace(p.Search)
	p.SortKey = strings.ToLower(strings.TrimSpace(p.SortKey))
	p.SortOrder = strings.ToLower(strings.TrimSpace(p.SortOrder))
	if p.SortKey == "" {
		p.SortOrder = ""
	}
	return p
}

// GenerateKey hashes the normalized parameters into a hex cache key.
// Case and surrounding whitespace do not change the key.
func GenerateKey(p KeyParams) (string, error) {
	n := p.normalized()
	if n.Server == "" {
		return "", ErrMissingServer
	}
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
