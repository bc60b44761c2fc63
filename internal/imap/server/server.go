// Package server runs the IMAP listener: the accept loop, the
// per-connection dispatch loop, and the handler sub-packages
// (auth, mailbox, selection, message, extension) that each depend on
// a narrow Deps interface rather than this concrete type,
// mirroring the teacher's dependency-injection shape.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/conf"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/models"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// Capabilities advertised in the greeting and CAPABILITY per §6.
const baseCapabilities = "IMAP4rev1 IDLE NAMESPACE UIDPLUS MOVE SPECIAL-USE"

// Server holds everything a connection needs and nothing per-connection.
type Server struct {
	Upstream *upstream.Client
	Aliases  *mailresolve.Aliases
	Config   *conf.Config
	Logger   *log.Logger

	connCounter atomic.Int64
	tlsConfig   *tls.Config
}

// NewServer wires a Server from its dependencies. tlsConfig, if
// non-nil, is the certificate ListenAndServe uses either to wrap the
// listener in implicit TLS or, on a plain listener, to answer
// STARTTLS, so the certificate lives on the struct rather than being
// passed per-listener.
func NewServer(up *upstream.Client, aliases *mailresolve.Aliases, cfg *conf.Config, logger *log.Logger, tlsConfig *tls.Config) *Server {
	return &Server{Upstream: up, Aliases: aliases, Config: cfg, Logger: logger, tlsConfig: tlsConfig}
}

// ListenAndServe accepts connections on addr. When wrapTLS is true the
// listener itself terminates TLS (the 993/IMAPS port); otherwise
// connections start in the clear and may upgrade via STARTTLS using
// the same certificate.
func (s *Server) ListenAndServe(addr string, wrapTLS bool) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("imap: listen %s: %w", addr, err)
	}
	if wrapTLS {
		if s.tlsConfig == nil {
			return fmt.Errorf("imap: listen %s: implicit TLS requested without a certificate", addr)
		}
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.Logger.Printf("listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("imap: accept: %w", err)
		}
		go s.HandleConnection(conn)
	}
}

// HandleConnection drives one connection end to end: greeting, then
// the read/dispatch loop, recovering from any unexpected panic the
// way the teacher's "every handler returns, nothing throws" discipline
// requires (§A.2).
func (s *Server) HandleConnection(conn net.Conn) {
	defer conn.Close()

	id := strconv.FormatInt(s.connCounter.Add(1), 10)
	sess := models.NewSession(id, conn.RemoteAddr(), conn)

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Printf("session %s: panic recovered: %v", id, r)
		}
	}()

	s.writeLine(conn, fmt.Sprintf("* OK [CAPABILITY %s] Transmit IMAP Ready", baseCapabilities))
	s.runLoop(conn, sess)
}

// maxIdleTimeout caps the IDLE timer below RFC 2177's 29-minute
// inactivity ceiling so the server always nudges the client first
// (§4.4).
const maxIdleTimeout = 28 * time.Minute

func (s *Server) idleTimeout() time.Duration {
	timeout := 30 * time.Minute
	if s.Config != nil && s.Config.IMAPIdleTimeout > 0 {
		timeout = s.Config.IMAPIdleTimeout
	}
	if timeout > maxIdleTimeout {
		return maxIdleTimeout
	}
	return timeout
}

func (s *Server) ctx() context.Context {
	return context.Background()
}

// Context implements the handler Deps interfaces' Context method.
func (s *Server) Context() context.Context {
	return s.ctx()
}

// Reply implements the handler Deps interfaces' Reply method.
func (s *Server) Reply(conn net.Conn, line string) {
	s.writeLine(conn, line)
}

// ValidateKey implements the handler Deps interfaces' ValidateKey method.
func (s *Server) ValidateKey(ctx context.Context, apiKey string) (string, error) {
	return s.Upstream.ValidateKey(ctx, apiKey)
}

// GetSenderByEmail implements the handler Deps interfaces' GetSenderByEmail method.
func (s *Server) GetSenderByEmail(ctx context.Context, apiKey, email string) (*upstream.Sender, error) {
	return s.Upstream.GetSenderByEmail(ctx, apiKey, email)
}

// ListSenders implements the handler Deps interfaces' ListSenders method.
func (s *Server) ListSenders(ctx context.Context, apiKey string) ([]upstream.Sender, error) {
	return s.Upstream.ListSenders(ctx, apiKey)
}

// ListFolders implements the handler Deps interfaces' ListFolders method.
func (s *Server) ListFolders(ctx context.Context, apiKey, senderID string) ([]upstream.Folder, error) {
	return s.Upstream.ListFolders(ctx, apiKey, senderID)
}

// FolderStatus implements the handler Deps interfaces' FolderStatus method.
func (s *Server) FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*upstream.FolderStatus, error) {
	return s.Upstream.FolderStatus(ctx, apiKey, senderID, folder)
}

// CreateFolder implements the handler Deps interfaces' CreateFolder method.
func (s *Server) CreateFolder(ctx context.Context, apiKey, senderID, name string) error {
	return s.Upstream.CreateFolder(ctx, apiKey, senderID, name)
}

// DeleteFolder implements the handler Deps interfaces' DeleteFolder method.
func (s *Server) DeleteFolder(ctx context.Context, apiKey, senderID, folderID, folderName string) error {
	return s.Upstream.DeleteFolder(ctx, apiKey, senderID, folderID, folderName)
}

// TLSConfig implements the handler Deps interfaces' TLSConfig method.
// It returns the TLS configuration used for STARTTLS upgrades, nil in
// development when no certificate is configured.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}
