package upstream

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// Append uploads a raw RFC 822 message into folder, returning the
// assigned UID. The literal bytes are forwarded untouched (never
// decoded as text — §9 open question 2) by base64-encoding them for
// the JSON transport.
func (c *Client) Append(ctx context.Context, apiKey, senderID, folder string, message []byte, flags []string, date *time.Time) (uint32, error) {
	path := fmt.Sprintf("/folders/%s/append", folder)
	body := map[string]interface{}{
		"message": base64.StdEncoding.EncodeToString(message),
	}
	if len(flags) > 0 {
		body["flags"] = flags
	}
	if date != nil {
		body["date"] = date.UTC().Format(time.RFC3339)
	}

	var resp struct {
		UID uint32 `json:"uid"`
	}
	if err := c.doJSON(ctx, "POST", path, apiKey, body, &resp, false); err != nil {
		return 0, err
	}
	c.cache.InvalidateFolder(senderID, folder)
	return resp.UID, nil
}

// Delete removes (and, when expunge is true, permanently expunges)
// message uid from folder, invalidating its caches on success.
func (c *Client) Delete(ctx context.Context, apiKey, senderID, folder string, uid uint32, expunge bool) error {
	path := fmt.Sprintf("/messages/%d?folder=%s&expunge=%t", uid, folder, expunge)
	if err := c.doJSON(ctx, "DELETE", path, apiKey, nil, nil, false); err != nil {
		return err
	}
	c.cache.InvalidateMessage(senderID, folder, uid)
	return nil
}
