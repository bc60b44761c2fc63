package selection

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// fakeConn is an in-memory net.Conn whose Write side just accumulates
// bytes, so Reply's output can be inspected synchronously without the
// concurrency net.Pipe would require.
type fakeConn struct {
	bytes.Buffer
}

func (c *fakeConn) Close() error                       { return nil }
func (c *fakeConn) LocalAddr() net.Addr                { return nil }
func (c *fakeConn) RemoteAddr() net.Addr               { return nil }
func (c *fakeConn) SetDeadline(time.Time) error        { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error    { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error   { return nil }

// fakeDeps is a minimal in-memory stand-in for Deps, grounded on the
// narrow-interface fakes used throughout the mailresolve/cache tests.
type fakeDeps struct {
	status    *upstream.FolderStatus
	messages  []upstream.Message
	sender    *mailresolve.Sender
	deleted   []uint32
	statusErr error
	listErr   error
}

func (f *fakeDeps) Reply(conn net.Conn, line string) {
	conn.Write([]byte(line + "\r\n"))
}

func (f *fakeDeps) Context() context.Context { return context.Background() }

func (f *fakeDeps) Resolve(ctx context.Context, apiKey string, pinned *models.Sender, mailbox string) (mailresolve.Resolved, error) {
	if f.sender == nil {
		return mailresolve.Resolved{FolderName: mailbox}, nil
	}
	return mailresolve.Resolved{Sender: f.sender, FolderName: mailbox}, nil
}

func (f *fakeDeps) FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*upstream.FolderStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeDeps) ListMessages(ctx context.Context, apiKey, senderID, folder string, q upstream.MessageQuery) ([]upstream.Message, error) {
	return f.messages, f.listErr
}

func (f *fakeDeps) DeleteMessage(ctx context.Context, apiKey, senderID, folder string, uid uint32, expunge bool) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func TestHandleSelectNoSuchMailbox(t *testing.T) {
	deps := &fakeDeps{}
	conn := &fakeConn{}
	sess := models.NewSession("1", nil, nil)

	HandleSelect(deps, conn, "a1", sess, "Nope")

	waitFor(t, conn, "a1 NO")
	if sess.State == models.Selected {
		t.Error("session should not enter Selected state when resolution fails")
	}
}

func TestHandleSelectSuccess(t *testing.T) {
	deps := &fakeDeps{
		sender: &mailresolve.Sender{ID: "sender-1", Email: "a@example.com"},
		status: &upstream.FolderStatus{Exists: 2, Recent: 1, UIDValidity: 42, UIDNext: 10},
		messages: []upstream.Message{
			{UID: 1, Flags: []string{`\Seen`}},
			{UID: 2, Flags: nil},
		},
	}
	conn := &fakeConn{}
	sess := models.NewSession("1", nil, nil)

	HandleSelect(deps, conn, "a1", sess, "INBOX")

	waitFor(t, conn, "a1 OK [READ-WRITE] SELECT completed")
	if sess.State != models.Selected {
		t.Fatalf("session state = %v, want Selected", sess.State)
	}
	if sess.SelectedFolder.UIDValidity != 42 {
		t.Errorf("UIDValidity = %d, want 42", sess.SelectedFolder.UIDValidity)
	}
	if len(sess.SelectedFolder.MessageUIDs) != 2 {
		t.Errorf("MessageUIDs = %v, want 2 entries", sess.SelectedFolder.MessageUIDs)
	}
}

func TestHandleExamineIsReadOnly(t *testing.T) {
	deps := &fakeDeps{
		sender: &mailresolve.Sender{ID: "sender-1"},
		status: &upstream.FolderStatus{},
	}
	conn := &fakeConn{}
	sess := models.NewSession("1", nil, nil)

	HandleExamine(deps, conn, "a1", sess, "INBOX")

	waitFor(t, conn, "a1 OK [READ-ONLY] EXAMINE completed")
	if !sess.SelectedFolder.ReadOnly {
		t.Error("EXAMINE must leave the folder read-only")
	}
}

func TestHandleCloseExpungesDeletedInWritableFolder(t *testing.T) {
	deps := &fakeDeps{
		messages: []upstream.Message{
			{UID: 1, Flags: []string{`\Deleted`}},
			{UID: 2, Flags: nil},
		},
	}
	conn := &fakeConn{}
	sess := models.NewSession("1", nil, nil)
	sess.Select(&models.SelectedFolder{SenderID: "s1", FolderName: "INBOX", ReadOnly: false})

	HandleClose(deps, conn, "a1", sess)

	waitFor(t, conn, "a1 OK CLOSE completed")
	if len(deps.deleted) != 1 || deps.deleted[0] != 1 {
		t.Errorf("deleted = %v, want [1]", deps.deleted)
	}
	if sess.SelectedFolder != nil {
		t.Error("CLOSE must leave the session unselected")
	}
}

func TestHandleCloseReadOnlyExpungesNothing(t *testing.T) {
	deps := &fakeDeps{
		messages: []upstream.Message{{UID: 1, Flags: []string{`\Deleted`}}},
	}
	conn := &fakeConn{}
	sess := models.NewSession("1", nil, nil)
	sess.Select(&models.SelectedFolder{SenderID: "s1", FolderName: "INBOX", ReadOnly: true})

	HandleClose(deps, conn, "a1", sess)

	waitFor(t, conn, "a1 OK CLOSE completed")
	if len(deps.deleted) != 0 {
		t.Errorf("deleted = %v, want none for a read-only selection", deps.deleted)
	}
}

func waitFor(t *testing.T, conn *fakeConn, want string) {
	t.Helper()
	if !strings.Contains(conn.String(), want) {
		t.Fatalf("output %q does not contain %q", conn.String(), want)
	}
}
