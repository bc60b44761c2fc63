package upstream

import (
	"context"
	"fmt"
)

// Search passes criteria through to the upstream unevaluated (§4.2)
// and returns matching UIDs. Never cached: search results depend on
// content the gateway cannot invalidate against.
func (c *Client) Search(ctx context.Context, apiKey, folder string, criteria []SearchCriterion) ([]uint32, error) {
	path := fmt.Sprintf("/folders/%s/search", folder)
	var resp struct {
		UIDs []uint32 `json:"uids"`
	}
	if err := c.doJSON(ctx, "POST", path, apiKey, map[string]interface{}{
		"criteria": criteria,
	}, &resp, false); err != nil {
		return nil, err
	}
	return resp.UIDs, nil
}

// Sync triggers an upstream resync of senderID's mailbox and drops
// every cache entry scoped to that sender.
func (c *Client) Sync(ctx context.Context, apiKey, senderID string) error {
	path := fmt.Sprintf("/mailbox/%s/sync", senderID)
	if err := c.doJSON(ctx, "POST", path, apiKey, nil, nil, false); err != nil {
		return err
	}
	c.cache.InvalidateSender(senderID)
	return nil
}
