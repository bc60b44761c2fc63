package message

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/parser"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/response"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// HandleSearch passes criteria through to the upstream unevaluated per
// §4.2, then translates the matching UIDs back into whatever addressing
// space the client asked for (UID or sequence number), restricted to
// messages still present in the current selection.
func HandleSearch(deps Deps, conn net.Conn, tag string, sess *models.Session, useUID bool, criteria []parser.SearchCriterion) {
	folder := sess.SelectedFolder
	converted := make([]upstream.SearchCriterion, len(criteria))
	for i, c := range criteria {
		value := c.Value
		if c.Keyword == "LARGER" || c.Keyword == "SMALLER" {
			value = strconv.Itoa(c.Number)
		}
		converted[i] = upstream.SearchCriterion{Key: c.Keyword, Value: value, Negate: c.Negated}
	}

	ctx := deps.Context()
	matched, err := deps.Search(ctx, sess.APIKey, folder.FolderName, converted)
	if err != nil {
		deps.Reply(conn, fmt.Sprintf("%s NO SEARCH failed", tag))
		return
	}

	present := make(map[uint32]bool, len(matched))
	for _, uid := range matched {
		present[uid] = true
	}

	var numbers []uint32
	for _, uid := range folder.MessageUIDs {
		if !present[uid] {
			continue
		}
		if useUID {
			numbers = append(numbers, uid)
		} else if seq := folder.SeqOf(uid); seq > 0 {
			numbers = append(numbers, uint32(seq))
		}
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	strs := make([]string, len(numbers))
	for i, n := range numbers {
		strs[i] = strconv.FormatUint(uint64(n), 10)
	}
	deps.Reply(conn, response.Untagged(strings.TrimRight("SEARCH "+strings.Join(strs, " "), " ")))
	deps.Reply(conn, fmt.Sprintf("%s OK SEARCH completed", tag))
}
