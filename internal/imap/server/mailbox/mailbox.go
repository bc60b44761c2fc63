// Package mailbox implements LIST, LSUB, STATUS, CREATE, DELETE,
// SUBSCRIBE, UNSUBSCRIBE and RENAME, grounded on §4.6.
package mailbox

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// Deps is the narrow surface mailbox handlers need from the server.
type Deps interface {
	Reply(conn net.Conn, line string)
	Context() context.Context
	ListSenders(ctx context.Context, apiKey string) ([]upstream.Sender, error)
	ListFolders(ctx context.Context, apiKey, senderID string) ([]upstream.Folder, error)
	FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*upstream.FolderStatus, error)
	CreateFolder(ctx context.Context, apiKey, senderID, name string) error
	DeleteFolder(ctx context.Context, apiKey, senderID, folderID, folderName string) error
	Resolve(ctx context.Context, apiKey string, pinned *models.Sender, mailbox string) (mailresolve.Resolved, error)
}

var specialUseAtoms = map[string]string{
	"inbox":   `\Inbox`,
	"sent":    `\Sent`,
	"drafts":  `\Drafts`,
	"trash":   `\Trash`,
	"archive": `\Archive`,
	"junk":    `\Junk`,
}

// HandleList implements LIST and (identically, since every folder is
// considered subscribed) LSUB.
func HandleList(deps Deps, conn net.Conn, tag string, sess *models.Session, reference, pattern string) {
	full := reference + pattern
	if full == "" {
		deps.Reply(conn, response.List(nil, "/", ""))
		deps.Reply(conn, fmt.Sprintf("%s OK LIST completed", tag))
		return
	}

	ctx := deps.Context()
	senders, err := accessibleSenders(ctx, deps, sess)
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO LIST failed", tag))
		return
	}

	for _, sender := range senders {
		folders, err := deps.ListFolders(ctx, sess.APIKey, sender.ID)
		if err != nil {
			continue
		}
		for _, f := range folders {
			name := f.Name
			if sess.PinnedSender == nil {
				name = sender.Email + "/" + f.Name
			}
			if !matchWildcard(full, name) {
				continue
			}
			flags := f.Flags
			if atom, ok := specialUseAtoms[strings.ToLower(f.SpecialUse)]; ok {
				flags = append(append([]string{}, flags...), atom)
			}
			deps.Reply(conn, response.Untagged(response.List(flags, "/", name)))
		}
	}
	deps.Reply(conn, fmt.Sprintf("%s OK LIST completed", tag))
}

// HandleLsub delegates to HandleList; every folder is subscribed.
func HandleLsub(deps Deps, conn net.Conn, tag string, sess *models.Session, reference, pattern string) {
	HandleList(deps, conn, tag, sess, reference, pattern)
}

func accessibleSenders(ctx context.Context, deps Deps, sess *models.Session) ([]upstream.Sender, error) {
	if sess.PinnedSender != nil {
		return []upstream.Sender{{ID: sess.PinnedSender.ID, Email: sess.PinnedSender.Email}}, nil
	}
	return deps.ListSenders(ctx, sess.APIKey)
}

// matchWildcard implements the IMAP mailbox pattern: `*` matches any
// run of characters (including `/`), `%` matches any run except `/`.
func matchWildcard(pattern, name string) bool {
	return wildcardMatch(pattern, name)
}

func wildcardMatch(pattern, name string) bool {
	if pattern == "" {
		return name == ""
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(name); i++ {
			if wildcardMatch(pattern[1:], name[i:]) {
				return true
			}
		}
		return false
	case '%':
		for i := 0; i <= len(name); i++ {
			if strings.ContainsRune(name[:i], '/') {
				break
			}
			if wildcardMatch(pattern[1:], name[i:]) {
				return true
			}
		}
		return false
	default:
		if len(name) == 0 || name[0] != pattern[0] {
			return false
		}
		return wildcardMatch(pattern[1:], name[1:])
	}
}

// HandleCreate delegates CREATE to the upstream, resolving the sender
// the same way SELECT does.
func HandleCreate(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string) {
	ctx := deps.Context()
	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO Mailbox not found", tag))
		return
	}
	if err := deps.CreateFolder(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName); err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO CREATE failed", tag))
		return
	}
	deps.Reply(conn, fmt.Sprintf("%s OK CREATE completed", tag))
}

// HandleDelete delegates DELETE to the upstream.
func HandleDelete(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string) {
	ctx := deps.Context()
	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO Mailbox not found", tag))
		return
	}
	if err := deps.DeleteFolder(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName, resolved.FolderName); err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO DELETE failed", tag))
		return
	}
	deps.Reply(conn, fmt.Sprintf("%s OK DELETE completed", tag))
}

// HandleSubscribe always succeeds: every folder is considered
// subscribed (§4.6).
func HandleSubscribe(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, fmt.Sprintf("%s OK SUBSCRIBE completed", tag))
}

// HandleUnsubscribe always succeeds, for the same reason.
func HandleUnsubscribe(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, fmt.Sprintf("%s OK UNSUBSCRIBE completed", tag))
}

// HandleRename is grammatically accepted but never supported (§4.6, non-goal).
func HandleRename(deps Deps, conn net.Conn, tag string) {
	deps.Reply(conn, fmt.Sprintf("%s NO RENAME not supported", tag))
}

var statusItemNames = map[string]bool{
	"MESSAGES":    true,
	"RECENT":      true,
	"UIDNEXT":     true,
	"UIDVALIDITY": true,
	"UNSEEN":      true,
}

// HandleStatus answers STATUS with only the requested items, in the
// order the client asked for them.
func HandleStatus(deps Deps, conn net.Conn, tag string, sess *models.Session, mailbox string, items []string) {
	ctx := deps.Context()
	resolved, err := deps.Resolve(ctx, sess.APIKey, sess.PinnedSender, mailbox)
	if err != nil || resolved.Sender == nil {
		deps.Reply(conn, fmt.Sprintf("%s NO Mailbox not found", tag))
		return
	}
	status, err := deps.FolderStatus(ctx, sess.APIKey, resolved.Sender.ID, resolved.FolderName)
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO STATUS failed", tag))
		return
	}

	values := map[string]string{}
	upper := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.ToUpper(item)
		if !statusItemNames[name] {
			continue
		}
		upper = append(upper, name)
		switch name {
		case "MESSAGES":
			values[name] = fmt.Sprintf("%d", status.Exists)
		case "RECENT":
			values[name] = fmt.Sprintf("%d", status.Recent)
		case "UIDNEXT":
			values[name] = fmt.Sprintf("%d", status.UIDNext)
		case "UIDVALIDITY":
			values[name] = fmt.Sprintf("%d", status.UIDValidity)
		case "UNSEEN":
			values[name] = fmt.Sprintf("%d", status.Unseen)
		}
	}

	deps.Reply(conn, response.Untagged(response.Status(mailbox, upper, values)))
	deps.Reply(conn, fmt.Sprintf("%s OK STATUS completed", tag))
}
