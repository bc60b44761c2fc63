package upstream

import (
	"context"
	"fmt"
)

// UpdateFlags applies a flag change to a message and returns the
// upstream-authoritative resulting flag set, invalidating the
// message/list/status caches on success (§4.6, §4.8).
func (c *Client) UpdateFlags(ctx context.Context, apiKey, senderID, folder string, uid uint32, flags []string) ([]string, error) {
	path := fmt.Sprintf("/messages/%d/flags", uid)
	var resp struct {
		Flags []string `json:"flags"`
	}
	if err := c.doJSON(ctx, "PATCH", path, apiKey, map[string]interface{}{
		"folder": folder,
		"flags":  flags,
	}, &resp, false); err != nil {
		return nil, err
	}
	c.cache.InvalidateMessage(senderID, folder, uid)
	return resp.Flags, nil
}
