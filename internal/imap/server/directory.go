package server

import (
	"context"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// directory adapts *upstream.Client to mailresolve.Directory, converting
// between the upstream wire types and mailresolve's local subset types.
type directory struct {
	s *Server
}

func (d directory) ListSenders(ctx context.Context, apiKey string) ([]mailresolve.Sender, error) {
	senders, err := d.s.Upstream.ListSenders(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return toMailresolveSenders(senders), nil
}

func (d directory) GetSenderByEmail(ctx context.Context, apiKey, email string) (*mailresolve.Sender, error) {
	sender, err := d.s.Upstream.GetSenderByEmail(ctx, apiKey, email)
	if err != nil || sender == nil {
		return nil, err
	}
	return &mailresolve.Sender{ID: sender.ID, Email: sender.Email}, nil
}

func (d directory) ListFolders(ctx context.Context, apiKey, senderID string) ([]mailresolve.Folder, error) {
	folders, err := d.s.Upstream.ListFolders(ctx, apiKey, senderID)
	if err != nil {
		return nil, err
	}
	out := make([]mailresolve.Folder, len(folders))
	for i, f := range folders {
		out[i] = mailresolve.Folder{Name: f.Name}
	}
	return out, nil
}

func toMailresolveSenders(senders []upstream.Sender) []mailresolve.Sender {
	out := make([]mailresolve.Sender, len(senders))
	for i, s := range senders {
		out[i] = mailresolve.Sender{ID: s.ID, Email: s.Email}
	}
	return out
}

// Resolve resolves a mailbox name to a sender and canonical folder
// name using the server's aliases and upstream directory, per §4.7.
func (s *Server) Resolve(ctx context.Context, apiKey string, pinned *models.Sender, mailbox string) (mailresolve.Resolved, error) {
	var pinnedResolve *mailresolve.Sender
	if pinned != nil {
		pinnedResolve = &mailresolve.Sender{ID: pinned.ID, Email: pinned.Email}
	}
	return mailresolve.Resolve(ctx, directory{s: s}, apiKey, s.Aliases, pinnedResolve, mailbox)
}
