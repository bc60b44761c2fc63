package cache

import (
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTL table (§4.8). Field names mirror the specification's TTL_TABLE.
const (
	TTLAPIKey      = 600_000 * time.Millisecond
	TTLFolders     = 300_000 * time.Millisecond
	TTLFolderStatus = 120_000 * time.Millisecond
	TTLMessages    = 120_000 * time.Millisecond
	TTLMessageBody = 604_800_000 * time.Millisecond
	TTLSender      = 600_000 * time.Millisecond
)

// Manager is the shared, process-global cache used by every session's
// upstream calls (§5: "safe under concurrent use, internally
// serialised is acceptable"). Memory tier holds small hot metadata;
// Persistent tier holds immutable message bodies.
type Manager struct {
	Memory     *MemoryTier
	Persistent Backend

	group singleflight.Group
}

func NewManager(memory *MemoryTier, persistent Backend) *Manager {
	return &Manager{Memory: memory, Persistent: persistent}
}

// GetOrLoadMemory returns the cached value for key, or calls load and
// caches its result. Concurrent callers for the same key share one
// in-flight load (singleflight), so a thundering herd of identical
// FETCHes only costs one upstream round trip.
func (m *Manager) GetOrLoadMemory(key string, ttl time.Duration, load func() ([]byte, error)) ([]byte, error) {
	if v, ok := m.Memory.Get(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		if v, ok := m.Memory.Get(key); ok {
			return v, nil
		}
		data, err := load()
		if err != nil {
			return nil, err
		}
		m.Memory.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetOrLoadPersistent is the body-tier equivalent, used for message
// bodies which are immutable and worth the 7-day TTL.
func (m *Manager) GetOrLoadPersistent(key string, ttl time.Duration, load func() ([]byte, error)) ([]byte, error) {
	if v, ok := m.Persistent.Get(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do("persistent:"+key, func() (interface{}, error) {
		if v, ok := m.Persistent.Get(key); ok {
			return v, nil
		}
		data, err := load()
		if err != nil {
			return nil, err
		}
		m.Persistent.Set(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// InvalidateSender drops everything scoped to a sender, per §4.8.
func (m *Manager) InvalidateSender(senderID string) {
	m.Memory.DeleteAnchoredPrefix(fmt.Sprintf("folders:%s", senderID))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("status:%s", senderID)))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("messages:%s", senderID)))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("message:%s", senderID)))
	m.Memory.DeletePattern(anchoredPrefix("sender"))
	m.Memory.Delete(SendersAllKey())
	m.Persistent.DeletePattern(fmt.Sprintf("body:%s:%%", senderID))
}

// InvalidateFolder drops status/listing/message-list data for one
// folder, leaving other folders of the sender untouched.
func (m *Manager) InvalidateFolder(senderID, folder string) {
	m.Memory.Delete(StatusKey(senderID, folder))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("messages:%s:%s", senderID, folder)))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("message:%s:%s", senderID, folder)))
	m.Persistent.DeletePattern(fmt.Sprintf("body:%s:%s:%%", senderID, folder))
	m.Memory.Delete(FoldersKey(senderID))
}

// InvalidateMessage drops the single message's cached metadata and
// body plus the folder's listing/status (since counts/flags changed).
func (m *Manager) InvalidateMessage(senderID, folder string, uid uint32) {
	m.Memory.Delete(MessageKey(senderID, folder, uid))
	m.Persistent.Delete(BodyKey(senderID, folder, uid))
	m.Memory.DeletePattern(anchoredPrefix(fmt.Sprintf("messages:%s:%s", senderID, folder)))
	m.Memory.Delete(StatusKey(senderID, folder))
}

// Prune runs the periodic 5-minute sweep on both tiers (§4.8).
func (m *Manager) Prune() {
	m.Memory.Prune()
	m.Persistent.Prune()
}

// RunPruner starts the periodic prune loop; call with a cancellable
// context's Done to stop it at process shutdown.
func (m *Manager) RunPruner(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Prune()
		case <-stop:
			return
		}
	}
}
