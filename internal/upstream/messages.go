package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// MessageQuery selects which UIDs and which fields to fetch, mirroring
// §4.4's "union of requested item types" rule.
type MessageQuery struct {
	UIDs   []uint32
	Fields []string // subset of FLAGS, UID, INTERNALDATE, RFC822.SIZE, ENVELOPE, BODYSTRUCTURE
	Limit  int
	Offset int
}

// canonical produces a stable cache-key suffix for a query.
func (q MessageQuery) canonical() string {
	uids := make([]string, len(q.UIDs))
	for i, u := range q.UIDs {
		uids[i] = strconv.FormatUint(uint64(u), 10)
	}
	sort.Strings(uids)
	fields := append([]string{}, q.Fields...)
	sort.Strings(fields)
	return fmt.Sprintf("uids=%s&fields=%s&limit=%d&offset=%d",
		strings.Join(uids, ","), strings.Join(fields, ","), q.Limit, q.Offset)
}

// ListMessages fetches metadata for the UIDs (or a windowed listing
// when UIDs is empty) in folder, requesting only the given fields.
func (c *Client) ListMessages(ctx context.Context, apiKey, senderID, folder string, q MessageQuery) ([]Message, error) {
	key := cache.MessagesKey(senderID, folder, q.canonical())
	data, err := c.cache.GetOrLoadMemory(key, cache.TTLMessages, func() ([]byte, error) {
		var messages []Message
		path := fmt.Sprintf("/folders/%s/messages?%s", folder, q.canonical())
		if err := c.doJSON(ctx, "GET", path, apiKey, nil, &messages, true); err != nil {
			return nil, err
		}
		return json.Marshal(messages)
	})
	if err != nil {
		return nil, err
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode messages", Err: err}
	}
	return messages, nil
}

// GetMessage fetches a single message's metadata by UID.
func (c *Client) GetMessage(ctx context.Context, apiKey, senderID, folder string, uid uint32) (*Message, error) {
	key := cache.MessageKey(senderID, folder, uid)
	data, err := c.cache.GetOrLoadMemory(key, cache.TTLMessages, func() ([]byte, error) {
		var msg Message
		path := fmt.Sprintf("/messages/%d?folder=%s", uid, folder)
		if err := c.doJSON(ctx, "GET", path, apiKey, nil, &msg, true); err != nil {
			return nil, err
		}
		return json.Marshal(msg)
	})
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode message", Err: err}
	}
	return &msg, nil
}
