package message

import (
	"fmt"
	"net"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// HandleStore answers STORE/UID STORE: FLAGS replaces the set, +FLAGS
// and -FLAGS add/remove, and a trailing .SILENT suppresses the
// untagged FETCH responses that otherwise echo the resulting flags
// (§4.2). Each message is updated independently; one failing UID
// doesn't abort the rest.
func HandleStore(deps Deps, conn net.Conn, tag string, sess *models.Session, useUID bool, rawSet, dataItem string, newFlags []string) {
	folder := sess.SelectedFolder
	op := strings.ToUpper(dataItem)
	silent := strings.HasSuffix(op, ".SILENT")
	op = strings.TrimSuffix(op, ".SILENT")

	if op != "FLAGS" && op != "+FLAGS" && op != "-FLAGS" {
		deps.Reply(conn, fmt.Sprintf("%s BAD Invalid STORE data item", tag))
		return
	}

	uids := resolveSet(useUID, rawSet, folder.MessageUIDs)
	ctx := deps.Context()

	for _, uid := range uids {
		resultFlags := newFlags
		if op != "FLAGS" {
			current, err := deps.ListMessages(ctx, sess.APIKey, folder.SenderID, folder.FolderName, upstream.MessageQuery{
				UIDs:   []uint32{uid},
				Fields: []string{"FLAGS"},
			})
			if err != nil || len(current) == 0 {
				continue
			}
			set := map[string]bool{}
			for _, f := range current[0].Flags {
				set[f] = true
			}
			for _, f := range newFlags {
				if op == "+FLAGS" {
					set[f] = true
				} else {
					delete(set, f)
				}
			}
			resultFlags = nil
			for f := range set {
				resultFlags = append(resultFlags, f)
			}
		}

		updated, err := deps.UpdateFlags(ctx, sess.APIKey, folder.SenderID, folder.FolderName, uid, resultFlags)
		if err != nil {
			continue
		}
		if silent {
			continue
		}

		seq := folder.SeqOf(uid)
		line := fmt.Sprintf("%d FETCH (FLAGS (%s))", seq, strings.Join(updated, " "))
		if useUID {
			line = fmt.Sprintf("%d FETCH (FLAGS (%s) UID %d)", seq, strings.Join(updated, " "), uid)
		}
		deps.Reply(conn, response.Untagged(line))
	}

	deps.Reply(conn, fmt.Sprintf("%s OK STORE completed", tag))
}
