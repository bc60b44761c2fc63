package upstream

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// validKeyPrefixes are the only accepted API-key prefixes (§6): a key
// must satisfy this format predicate before any upstream call is made.
var validKeyPrefixes = []string{"pm_live_", "pm_test_"}

func IsValidKeyFormat(key string) bool {
	for _, p := range validKeyPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

type workspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
}

// ValidateKey checks the API key against the upstream and caches a
// successful result for TTLAPIKey. Failures are never cached, to
// avoid sticky denials (§7).
func (c *Client) ValidateKey(ctx context.Context, apiKey string) (string, error) {
	if !IsValidKeyFormat(apiKey) {
		return "", ErrAuthFailed
	}

	key := cache.APIKeyKey(apiKey)
	if v, ok := c.cache.Memory.Get(key); ok {
		var ws workspaceResponse
		if json.Unmarshal(v, &ws) == nil {
			return ws.WorkspaceID, nil
		}
	}

	var ws workspaceResponse
	if err := c.doJSON(ctx, "GET", "/api/workspaces", apiKey, nil, &ws, true); err != nil {
		return "", err
	}

	data, _ := json.Marshal(ws)
	c.cache.Memory.Set(key, data, cache.TTLAPIKey)
	return ws.WorkspaceID, nil
}
