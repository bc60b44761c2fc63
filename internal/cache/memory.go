package cache

import (
	"container/list"
	"regexp"
	"sync"
	"time"
)

// MemoryTierConfig mirrors the defaults from §4.8.
type MemoryTierConfig struct {
	MaxEntries int
	MaxBytes   int64
	DefaultTTL time.Duration
}

func DefaultMemoryTierConfig() MemoryTierConfig {
	return MemoryTierConfig{
		MaxEntries: 50_000,
		MaxBytes:   50 * 1024 * 1024,
		DefaultTTL: 2 * time.Minute,
	}
}

type memEntry struct {
	key       string
	value     []byte
	size      int64
	expiresAt time.Time
}

// MemoryTier is an LRU-by-access, TTL, byte-bounded in-memory cache.
// Safe for concurrent use: all operations are serialised by mu.
type MemoryTier struct {
	cfg MemoryTierConfig

	mu      sync.Mutex
	ll      *list.List // front = MRU
	index   map[string]*list.Element
	curSize int64
}

func NewMemoryTier(cfg MemoryTierConfig) *MemoryTier {
	return &MemoryTier{
		cfg:   cfg,
		ll:    list.New(),
		index: map[string]*list.Element{},
	}
}

// EstimateSize returns the byte cost of v. Memory-tier values are
// always raw bytes, so the cost is simply their length.
func EstimateSize(v []byte) int64 {
	return int64(len(v))
}

func (m *MemoryTier) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.index[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*memEntry)
	if !ent.expiresAt.IsZero() && time.Now().After(ent.expiresAt) {
		m.removeElement(el)
		return nil, false
	}
	m.ll.MoveToFront(el)
	return ent.value, true
}

func (m *MemoryTier) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.index[key]; ok {
		m.removeElement(el)
	}

	if ttl == 0 {
		ttl = m.cfg.DefaultTTL
	}
	ent := &memEntry{key: key, value: value, size: EstimateSize(value)}
	if ttl > 0 {
		ent.expiresAt = time.Now().Add(ttl)
	}

	for (m.ll.Len() >= m.cfg.MaxEntries || m.curSize+ent.size > m.cfg.MaxBytes) && m.ll.Len() > 0 {
		m.evictOldest()
	}

	el := m.ll.PushFront(ent)
	m.index[key] = el
	m.curSize += ent.size
}

func (m *MemoryTier) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.index[key]; ok {
		m.removeElement(el)
	}
}

// DeletePattern removes every key matched by re (§4.8).
func (m *MemoryTier) DeletePattern(re *regexp.Regexp) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.ll.Front(); el != nil; {
		next := el.Next()
		ent := el.Value.(*memEntry)
		if re.MatchString(ent.key) {
			m.removeElement(el)
		}
		el = next
	}
}

// DeleteAnchoredPrefix removes prefix itself and anything nested under
// "prefix:...", without deleting unrelated keys sharing the prefix as
// a plain substring.
func (m *MemoryTier) DeleteAnchoredPrefix(prefix string) {
	m.DeletePattern(anchoredPrefix(prefix))
}

// Prune drops all expired entries; called periodically (§4.8).
func (m *MemoryTier) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for el := m.ll.Front(); el != nil; {
		next := el.Next()
		ent := el.Value.(*memEntry)
		if !ent.expiresAt.IsZero() && now.After(ent.expiresAt) {
			m.removeElement(el)
		}
		el = next
	}
}

type MemoryStats struct {
	Entries int
	Bytes   int64
}

func (m *MemoryTier) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MemoryStats{Entries: m.ll.Len(), Bytes: m.curSize}
}

func (m *MemoryTier) evictOldest() {
	el := m.ll.Back()
	if el != nil {
		m.removeElement(el)
	}
}

func (m *MemoryTier) removeElement(el *list.Element) {
	ent := el.Value.(*memEntry)
	m.ll.Remove(el)
	delete(m.index, ent.key)
	m.curSize -= ent.size
}
