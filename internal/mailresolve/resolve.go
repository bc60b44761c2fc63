package mailresolve

import (
	"context"
	"strings"
)

// Sender is the subset of upstream.Sender resolution needs.
type Sender struct {
	ID    string
	Email string
}

// Folder is the subset of upstream.Folder resolution needs.
type Folder struct {
	Name string
}

// Directory is the upstream surface mailresolve depends on, narrow
// enough to fake in tests instead of standing up an HTTP server.
type Directory interface {
	ListSenders(ctx context.Context, apiKey string) ([]Sender, error)
	GetSenderByEmail(ctx context.Context, apiKey, email string) (*Sender, error)
	ListFolders(ctx context.Context, apiKey, senderID string) ([]Folder, error)
}

// Resolved is the (sender, folder) pair a mailbox argument maps to.
// Sender is nil when resolution fails — the caller answers NO.
type Resolved struct {
	Sender     *Sender
	FolderName string
}

// Resolve implements the four-step order from §4.7: a pinned sender
// wins outright; an "email/folder" argument splits on the first `/`;
// otherwise every accessible sender is searched for a matching
// folder; failing all of that, the folder name alone is returned with
// no sender so the caller can answer NO.
func Resolve(ctx context.Context, dir Directory, apiKey string, aliases *Aliases, pinnedSender *Sender, mailbox string) (Resolved, error) {
	if pinnedSender != nil {
		return Resolved{Sender: pinnedSender, FolderName: aliases.Normalize(mailbox)}, nil
	}

	if idx := strings.IndexByte(mailbox, '/'); idx >= 0 {
		email := mailbox[:idx]
		folder := aliases.Normalize(mailbox[idx+1:])
		sender, err := dir.GetSenderByEmail(ctx, apiKey, email)
		if err != nil || sender == nil {
			return Resolved{FolderName: folder}, nil
		}
		return Resolved{Sender: sender, FolderName: folder}, nil
	}

	normalized := aliases.Normalize(mailbox)
	senders, err := dir.ListSenders(ctx, apiKey)
	if err != nil {
		return Resolved{}, err
	}
	for _, sender := range senders {
		folders, err := dir.ListFolders(ctx, apiKey, sender.ID)
		if err != nil {
			continue
		}
		for _, f := range folders {
			if strings.EqualFold(f.Name, normalized) {
				s := sender
				return Resolved{Sender: &s, FolderName: normalized}, nil
			}
		}
	}

	return Resolved{FolderName: normalized}, nil
}
