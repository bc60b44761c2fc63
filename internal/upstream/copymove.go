package upstream

import (
	"context"
	"fmt"
)

// Copy duplicates message uid from sourceFolder to targetFolder,
// returning the new UID in the target, and invalidates the target
// folder's cached listing/status (§4.6).
func (c *Client) Copy(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error) {
	path := fmt.Sprintf("/messages/%d/copy", uid)
	var resp struct {
		NewUID uint32 `json:"newUid"`
	}
	if err := c.doJSON(ctx, "POST", path, apiKey, map[string]string{
		"sourceFolder": sourceFolder,
		"targetFolder": targetFolder,
	}, &resp, false); err != nil {
		return 0, err
	}
	c.cache.InvalidateFolder(senderID, targetFolder)
	return resp.NewUID, nil
}

// Move moves message uid from sourceFolder to targetFolder, returning
// the new UID, and invalidates both folders (§4.6).
func (c *Client) Move(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error) {
	path := fmt.Sprintf("/messages/%d/move", uid)
	var resp struct {
		NewUID uint32 `json:"newUid"`
	}
	if err := c.doJSON(ctx, "POST", path, apiKey, map[string]string{
		"sourceFolder": sourceFolder,
		"targetFolder": targetFolder,
	}, &resp, false); err != nil {
		return 0, err
	}
	c.cache.InvalidateFolder(senderID, sourceFolder)
	c.cache.InvalidateFolder(senderID, targetFolder)
	return resp.NewUID, nil
}
