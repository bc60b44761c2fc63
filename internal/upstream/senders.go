package upstream

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// ListSenders returns every sender the API key can see (§4.6).
func (c *Client) ListSenders(ctx context.Context, apiKey string) ([]Sender, error) {
	key := cache.SendersAllKey()
	data, err := c.cache.GetOrLoadMemory(key, cache.TTLSender, func() ([]byte, error) {
		var senders []Sender
		if err := c.doJSON(ctx, "GET", "/api/mailbox/accounts", apiKey, nil, &senders, true); err != nil {
			return nil, err
		}
		return json.Marshal(senders)
	})
	if err != nil {
		return nil, err
	}
	var senders []Sender
	if err := json.Unmarshal(data, &senders); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode senders", Err: err}
	}
	return senders, nil
}

// GetSenderByEmail finds a sender by exact email match, case-insensitive.
func (c *Client) GetSenderByEmail(ctx context.Context, apiKey, email string) (*Sender, error) {
	key := cache.SenderKey(email)
	if v, ok := c.cache.Memory.Get(key); ok {
		if len(v) == 0 {
			return nil, ErrNotFound
		}
		var s Sender
		if json.Unmarshal(v, &s) == nil {
			return &s, nil
		}
	}

	senders, err := c.ListSenders(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	for _, s := range senders {
		if strings.EqualFold(s.Email, email) {
			data, _ := json.Marshal(s)
			c.cache.Memory.Set(key, data, cache.TTLSender)
			return &s, nil
		}
	}
	c.cache.Memory.Set(key, nil, cache.TTLSender)
	return nil, ErrNotFound
}
