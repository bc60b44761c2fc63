package upstream

import (
	"context"
	"fmt"
)

// OutboundMessage is the JSON body posted for an SMTP submission, built
// by internal/smtp from the parsed MIME envelope and parts (§2, "parse
// MIME → POST JSON").
type OutboundMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
	Raw     []byte   `json:"raw"`
}

// Submit posts a submitted message to the upstream on behalf of
// senderID. It is never cached and never retried — a retry of a send
// could duplicate delivery, so doJSON's non-idempotent path applies.
func (c *Client) Submit(ctx context.Context, apiKey, senderID string, msg OutboundMessage) error {
	path := fmt.Sprintf("/api/mailbox/%s/send", senderID)
	if err := c.doJSON(ctx, "POST", path, apiKey, msg, nil, false); err != nil {
		return err
	}
	c.cache.InvalidateFolder(senderID, "Sent")
	return nil
}
