package server

import (
	"context"
	"time"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

// ListMessages implements the handler Deps interfaces' ListMessages method.
func (s *Server) ListMessages(ctx context.Context, apiKey, senderID, folder string, q upstream.MessageQuery) ([]upstream.Message, error) {
	return s.Upstream.ListMessages(ctx, apiKey, senderID, folder, q)
}

// GetBody implements the handler Deps interfaces' GetBody method.
func (s *Server) GetBody(ctx context.Context, apiKey, senderID, folder string, uid uint32, peek bool) (*upstream.Body, error) {
	return s.Upstream.GetBody(ctx, apiKey, senderID, folder, uid, peek)
}

// UpdateFlags implements the handler Deps interfaces' UpdateFlags method.
func (s *Server) UpdateFlags(ctx context.Context, apiKey, senderID, folder string, uid uint32, flags []string) ([]string, error) {
	return s.Upstream.UpdateFlags(ctx, apiKey, senderID, folder, uid, flags)
}

// Copy implements the handler Deps interfaces' Copy method.
func (s *Server) Copy(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error) {
	return s.Upstream.Copy(ctx, apiKey, senderID, sourceFolder, targetFolder, uid)
}

// Move implements the handler Deps interfaces' Move method.
func (s *Server) Move(ctx context.Context, apiKey, senderID, sourceFolder, targetFolder string, uid uint32) (uint32, error) {
	return s.Upstream.Move(ctx, apiKey, senderID, sourceFolder, targetFolder, uid)
}

// Append implements the handler Deps interfaces' Append method.
func (s *Server) Append(ctx context.Context, apiKey, senderID, folder string, message []byte, flags []string, date *time.Time) (uint32, error) {
	return s.Upstream.Append(ctx, apiKey, senderID, folder, message, flags, date)
}

// DeleteMessage implements the handler Deps interfaces' DeleteMessage method.
func (s *Server) DeleteMessage(ctx context.Context, apiKey, senderID, folder string, uid uint32, expunge bool) error {
	return s.Upstream.Delete(ctx, apiKey, senderID, folder, uid, expunge)
}

// Search implements the handler Deps interfaces' Search method.
func (s *Server) Search(ctx context.Context, apiKey, folder string, criteria []upstream.SearchCriterion) ([]uint32, error) {
	return s.Upstream.Search(ctx, apiKey, folder, criteria)
}
