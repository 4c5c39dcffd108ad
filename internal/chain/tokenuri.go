package chain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

const tokenURIPrefix = "data:application/json;base64,"

// Metadata is the ERC-721 JSON metadata document.
type Metadata struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Image       string                `json:"image"`
	Attributes  []domain.NFTAttribute `json:"attributes"`
}

// TokenURI encodes m as an inline base64 JSON data URI.
func TokenURI(m Metadata) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return tokenURIPrefix + base64.StdEncoding.EncodeToString(raw), nil
}

// ParseTokenURI decodes a URI produced by TokenURI.
func ParseTokenURI(uri string) (Metadata, error) {
	var m Metadata
	if !strings.HasPrefix(uri, tokenURIPrefix) {
		return m, errors.New("token uri is not an inline json data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, tokenURIPrefix))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(raw, &m)
	return m, err
}
