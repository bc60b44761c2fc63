package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// GetBody fetches a message's body, persistently cached for 7 days
// (§4.6, §4.8) because bodies are immutable once a UID is assigned.
// peek controls whether the upstream should avoid marking the message
// \Seen as a side effect.
func (c *Client) GetBody(ctx context.Context, apiKey, senderID, folder string, uid uint32, peek bool) (*Body, error) {
	key := cache.BodyKey(senderID, folder, uid)
	data, err := c.cache.GetOrLoadPersistent(key, cache.TTLMessageBody, func() ([]byte, error) {
		var body Body
		path := fmt.Sprintf("/messages/%d/body?folder=%s&peek=%t", uid, folder, peek)
		if err := c.doJSON(ctx, "GET", path, apiKey, nil, &body, true); err != nil {
			return nil, err
		}
		return json.Marshal(body)
	})
	if err != nil {
		return nil, err
	}
	var body Body
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode body", Err: err}
	}
	return &body, nil
}
