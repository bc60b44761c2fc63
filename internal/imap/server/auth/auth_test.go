package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

type fakeConn struct {
	bytes.Buffer
}

func (c *fakeConn) Close() error                     { return nil }
func (c *fakeConn) LocalAddr() net.Addr              { return nil }
func (c *fakeConn) RemoteAddr() net.Addr             { return nil }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

type fakeDeps struct {
	validKey    bool
	sender      *upstream.Sender
	senderErr   error
	tlsConfig   *tls.Config
}

func (f *fakeDeps) Reply(conn net.Conn, line string) {
	conn.Write([]byte(line + "\r\n"))
}

func (f *fakeDeps) ValidateKey(ctx context.Context, apiKey string) (string, error) {
	if !f.validKey {
		return "", upstream.ErrAuthFailed
	}
	return "workspace-1", nil
}

func (f *fakeDeps) GetSenderByEmail(ctx context.Context, apiKey, email string) (*upstream.Sender, error) {
	return f.sender, f.senderErr
}

func (f *fakeDeps) TLSConfig() *tls.Config { return f.tlsConfig }

func (f *fakeDeps) Context() context.Context { return context.Background() }

func TestHandleCapabilityAdvertisesStartTLSOnlyWhenAvailable(t *testing.T) {
	conn := &fakeConn{}
	deps := &fakeDeps{tlsConfig: &tls.Config{}}
	HandleCapability(deps, conn, "a1")
	if !strings.Contains(conn.String(), "STARTTLS") {
		t.Errorf("expected STARTTLS in capability list, got %q", conn.String())
	}

	conn2 := &fakeConn{}
	deps2 := &fakeDeps{tlsConfig: nil}
	HandleCapability(deps2, conn2, "a1")
	if strings.Contains(conn2.String(), "STARTTLS") {
		t.Errorf("did not expect STARTTLS without a configured certificate, got %q", conn2.String())
	}
}

func TestHandleLoginRejectsBadKeyFormat(t *testing.T) {
	conn := &fakeConn{}
	deps := &fakeDeps{}
	sess := models.NewSession("1", nil, nil)

	HandleLogin(deps, conn, "a1", []string{"api", "not-a-key"}, sess)

	if !strings.Contains(conn.String(), "a1 NO") {
		t.Errorf("expected rejection, got %q", conn.String())
	}
	if sess.State != models.NotAuth {
		t.Errorf("session state = %v, want NotAuth", sess.State)
	}
}

func TestHandleLoginUnpinnedIdentity(t *testing.T) {
	conn := &fakeConn{}
	deps := &fakeDeps{validKey: true}
	sess := models.NewSession("1", nil, nil)

	HandleLogin(deps, conn, "a1", []string{"api", "pm_live_abc123"}, sess)

	if !strings.Contains(conn.String(), "a1 OK") {
		t.Fatalf("expected success, got %q", conn.String())
	}
	if sess.State != models.Auth {
		t.Errorf("session state = %v, want Auth", sess.State)
	}
	if sess.PinnedSender != nil {
		t.Error("\"api\" login must leave the session unpinned")
	}
	if sess.APIKey != "pm_live_abc123" {
		t.Errorf("APIKey = %q, want the validated key", sess.APIKey)
	}
}

func TestHandleLoginPinnedSender(t *testing.T) {
	conn := &fakeConn{}
	deps := &fakeDeps{validKey: true, sender: &upstream.Sender{ID: "s1", Email: "a@example.com"}}
	sess := models.NewSession("1", nil, nil)

	HandleLogin(deps, conn, "a1", []string{"a@example.com", "pm_live_abc123"}, sess)

	if !strings.Contains(conn.String(), "a1 OK") {
		t.Fatalf("expected success, got %q", conn.String())
	}
	if sess.PinnedSender == nil || sess.PinnedSender.ID != "s1" {
		t.Errorf("PinnedSender = %+v, want sender s1", sess.PinnedSender)
	}
}

func TestHandleLoginUnknownSenderFails(t *testing.T) {
	conn := &fakeConn{}
	deps := &fakeDeps{validKey: true, sender: nil}
	sess := models.NewSession("1", nil, nil)

	HandleLogin(deps, conn, "a1", []string{"nobody@example.com", "pm_live_abc123"}, sess)

	if !strings.Contains(conn.String(), "a1 NO") {
		t.Errorf("expected rejection, got %q", conn.String())
	}
	if sess.State != models.NotAuth || sess.APIKey != "" {
		t.Errorf("session should remain unauthenticated, got state=%v apiKey=%q", sess.State, sess.APIKey)
	}
}
