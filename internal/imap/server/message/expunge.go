package message

import (
	"fmt"
	"net"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// HandleExpunge permanently removes every \Deleted message from the
// selected folder, emitting an untagged EXPUNGE at each message's
// current sequence number before splicing it out, so later numbers
// shift down correctly for the rest of the batch (§4.2).
func HandleExpunge(deps Deps, conn net.Conn, tag string, sess *models.Session) {
	folder := sess.SelectedFolder
	ctx := deps.Context()

	messages, err := deps.ListMessages(ctx, sess.APIKey, folder.SenderID, folder.FolderName, upstream.MessageQuery{
		Fields: []string{"UID", "FLAGS"},
	})
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO EXPUNGE failed", tag))
		return
	}

	for _, m := range messages {
		if !hasFlag(m.Flags, `\Deleted`) {
			continue
		}
		seq := folder.SeqOf(m.UID)
		if seq == 0 {
			continue
		}
		if err := deps.DeleteMessage(ctx, sess.APIKey, folder.SenderID, folder.FolderName, m.UID, true); err != nil {
			continue
		}
		folder.Splice(m.UID)
		deps.Reply(conn, response.Untagged(fmt.Sprintf("%d EXPUNGE", seq)))
	}

	deps.Reply(conn, fmt.Sprintf("%s OK EXPUNGE completed", tag))
}
