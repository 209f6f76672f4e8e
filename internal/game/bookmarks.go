package game

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Bookmark remembers a room this device has played in, so a returning player
// can re-list and resume without retyping the code. Bookmarks are purely
// local; nothing about them is shared with the partner.
type Bookmark struct {
	RoomID     string    `json:"room_id"`
	RoomCode   string    `json:"room_code"`
	PlayerName string    `json:"player_name"`
	RoomName   string    `json:"room_name,omitempty"`
	LastAccess time.Time `json:"last_access"`
}

type Bookmarks interface {
	List() []Bookmark
	Save(entry Bookmark)
	Remove(roomID string)
}

// FileBookmarks keeps a bounded most-recent-first list in a JSON file, the
// device-local equivalent of the browser's key-value store.
type FileBookmarks struct {
	mu    sync.Mutex
	path  string
	limit int
}

func NewFileBookmarks(path string, limit int) *FileBookmarks {
	if limit <= 0 {
		limit = 20
	}
	return &FileBookmarks{path: path, limit: limit}
}

func (b *FileBookmarks) List() []Bookmark {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load()
}

func (b *FileBookmarks) Save(entry Bookmark) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.load()
	kept := make([]Bookmark, 0, len(entries)+1)
	kept = append(kept, entry)
	for _, existing := range entries {
		if existing.RoomID != entry.RoomID {
			kept = append(kept, existing)
		}
	}
	if len(kept) > b.limit {
		kept = kept[:b.limit]
	}
	b.store(kept)
}

func (b *FileBookmarks) Remove(roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.load()
	kept := entries[:0]
	for _, existing := range entries {
		if existing.RoomID != roomID {
			kept = append(kept, existing)
		}
	}
	b.store(kept)
}

func (b *FileBookmarks) load() []Bookmark {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil
	}
	var entries []Bookmark
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

func (b *FileBookmarks) store(entries []Bookmark) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(b.path), 0o755)
	_ = os.WriteFile(b.path, data, 0o644)
}
