package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
)

// ListFolders returns every folder belonging to senderID.
func (c *Client) ListFolders(ctx context.Context, apiKey, senderID string) ([]Folder, error) {
	key := cache.FoldersKey(senderID)
	data, err := c.cache.GetOrLoadMemory(key, cache.TTLFolders, func() ([]byte, error) {
		var folders []Folder
		path := fmt.Sprintf("/api/mailbox/%s/folders", senderID)
		if err := c.doJSON(ctx, "GET", path, apiKey, nil, &folders, true); err != nil {
			return nil, err
		}
		return json.Marshal(folders)
	})
	if err != nil {
		return nil, err
	}
	var folders []Folder
	if err := json.Unmarshal(data, &folders); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode folders", Err: err}
	}
	return folders, nil
}

// FolderStatus fetches a folder's status counters (§4.6 "Folder status").
func (c *Client) FolderStatus(ctx context.Context, apiKey, senderID, folder string) (*FolderStatus, error) {
	key := cache.StatusKey(senderID, folder)
	data, err := c.cache.GetOrLoadMemory(key, cache.TTLFolderStatus, func() ([]byte, error) {
		var status FolderStatus
		path := fmt.Sprintf("/folders/%s/status", folder)
		if err := c.doJSON(ctx, "GET", path, apiKey, nil, &status, true); err != nil {
			return nil, err
		}
		return json.Marshal(status)
	})
	if err != nil {
		return nil, err
	}
	var status FolderStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, &Error{Kind: KindInternal, Message: "decode folder status", Err: err}
	}
	return &status, nil
}

// CreateFolder delegates to the upstream and invalidates the sender's
// folder list on success.
func (c *Client) CreateFolder(ctx context.Context, apiKey, senderID, name string) error {
	if err := c.doJSON(ctx, "POST", "/folders", apiKey, map[string]string{"name": name}, nil, false); err != nil {
		return err
	}
	c.cache.Memory.Delete(cache.FoldersKey(senderID))
	return nil
}

// DeleteFolder delegates to the upstream and invalidates the folder
// list plus anything cached for the deleted folder.
func (c *Client) DeleteFolder(ctx context.Context, apiKey, senderID, folderID, folderName string) error {
	path := fmt.Sprintf("/folders/%s", folderID)
	if err := c.doJSON(ctx, "DELETE", path, apiKey, nil, nil, false); err != nil {
		return err
	}
	c.cache.InvalidateFolder(senderID, folderName)
	return nil
}
