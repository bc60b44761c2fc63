// Package message implements FETCH, STORE, SEARCH, COPY, MOVE,
// EXPUNGE and APPEND: every command that reads or mutates the messages
// inside a selected folder (§4.2, §4.5, §4.6).
package message

import (
	"context"
	"net"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// Deps is the narrow surface message handlers need from the server.
type Deps interface {
	Reply(conn net.Conn, line string)
	Context() context.Context
	Resolve(ctx context.Context, apiKey string, pinned *models.Sender, mailbox string) (mailresolve.Resolved, error)
	FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*upstream.FolderStatus, error)
	ListMessages(ctx context.Context, apiKey, senderID, folder string, q upstream.MessageQuery) ([]upstream.Message, error)
	GetBody(ctx context.Context, apiKey, senderID, folder string, uid uint32, peek bool) (*upstream.Body, error)
	UpdateFlags(ctx context.Context, apiKey, senderID, folder string, uid uint32, flags []string) ([]string, error)
	Copy(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error)
	Move(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error)
	Append(ctx context.Context, apiKey, senderID, folder string, message []byte, flags []string, date *time.Time) (uint32, error)
	DeleteMessage(ctx context.Context, apiKey, senderID, folder string, uid uint32, expunge bool) error
	Search(ctx context.Context, apiKey, folder string, criteria []upstream.SearchCriterion) ([]uint32, error)
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
