package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1"

// CacheManager persists assembled conversations and their attributions so
// repeated list/export runs skip the full pipeline. The cache is keyed on the
// source database path and modification time; any database change invalidates
// it wholesale.
type CacheManager struct {
	cacheDir string
}

// CacheMetadata records what the cache was built from.
type CacheMetadata struct {
	DatabasePath    string    `yaml:"database_path"`
	DatabaseModTime time.Time `yaml:"database_mod_time"`
	CacheVersion    string    `yaml:"cache_version"`
	CreatedAt       time.Time `yaml:"created_at"`
}

// IndexEntry summarizes one cached conversation.
type IndexEntry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title,omitempty"`
	WorkspaceID  string `yaml:"workspace_id"`
	MatchedVia   string `yaml:"matched_via"`
	MessageCount int    `yaml:"message_count"`
	CreatedAt    int64  `yaml:"created_at,omitempty"`
	UpdatedAt    int64  `yaml:"updated_at,omitempty"`
}

// CacheIndex is the YAML index of all cached conversations.
type CacheIndex struct {
	Conversations []IndexEntry  `yaml:"conversations"`
	Metadata      CacheMetadata `yaml:"metadata"`
}

// NewCacheManager creates a cache manager rooted at cacheDir.
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{cacheDir: cacheDir}
}

func (cm *CacheManager) indexPath() string {
	return filepath.Join(cm.cacheDir, "index.yaml")
}

func (cm *CacheManager) conversationPath(id string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("conversation_%s.json", id))
}

// IsValid reports whether the cache matches the given database.
func (cm *CacheManager) IsValid(dbPath string) bool {
	index, err := cm.LoadIndex()
	if err != nil {
		return false
	}
	if index.Metadata.CacheVersion != cacheVersion || index.Metadata.DatabasePath != dbPath {
		return false
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return false
	}
	return index.Metadata.DatabaseModTime.Equal(info.ModTime())
}

// LoadIndex loads the cache index.
func (cm *CacheManager) LoadIndex() (*CacheIndex, error) {
	data, err := os.ReadFile(cm.indexPath())
	if err != nil {
		return nil, err
	}

	var index CacheIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache index: %w", err)
	}
	return &index, nil
}

// Save writes every conversation plus the index in one pass. Attributions
// are matched to conversations by id; conversations without one are indexed
// as unassigned.
func (cm *CacheManager) Save(conversations []*Conversation, attributions []Attribution, dbPath string) error {
	if err := os.MkdirAll(cm.cacheDir, 0o755); err != nil {
		return err
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		return err
	}

	byID := make(map[string]Attribution, len(attributions))
	for _, att := range attributions {
		byID[att.ConversationID] = att
	}

	index := CacheIndex{
		Metadata: CacheMetadata{
			DatabasePath:    dbPath,
			DatabaseModTime: info.ModTime(),
			CacheVersion:    cacheVersion,
			CreatedAt:       time.Now(),
		},
	}

	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		if err := cm.saveConversation(conv); err != nil {
			LogWarn("Failed to cache conversation %s: %v", conv.ID, err)
			continue
		}

		att, ok := byID[conv.ID]
		if !ok {
			att = Attribution{ConversationID: conv.ID, WorkspaceID: UnassignedWorkspace, MatchedVia: MatchNone}
		}
		index.Conversations = append(index.Conversations, IndexEntry{
			ID:           conv.ID,
			Title:        conv.Title,
			WorkspaceID:  att.WorkspaceID,
			MatchedVia:   string(att.MatchedVia),
			MessageCount: len(conv.Messages),
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
		})
	}

	data, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}
	return os.WriteFile(cm.indexPath(), data, 0o644)
}

func (cm *CacheManager) saveConversation(conv *Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cm.conversationPath(conv.ID), data, 0o644)
}

// LoadConversation loads one cached conversation by id.
func (cm *CacheManager) LoadConversation(id string) (*Conversation, error) {
	data, err := os.ReadFile(cm.conversationPath(id))
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached conversation: %w", err)
	}
	return &conv, nil
}

// LoadAll loads every cached conversation plus its attribution, in index
// order. Entries whose payload is unreadable are skipped.
func (cm *CacheManager) LoadAll() ([]*Conversation, []Attribution, error) {
	index, err := cm.LoadIndex()
	if err != nil {
		return nil, nil, err
	}

	var conversations []*Conversation
	var attributions []Attribution
	for _, entry := range index.Conversations {
		conv, err := cm.LoadConversation(entry.ID)
		if err != nil {
			LogWarn("Failed to load cached conversation %s: %v", entry.ID, err)
			continue
		}
		conversations = append(conversations, conv)
		attributions = append(attributions, Attribution{
			ConversationID: entry.ID,
			WorkspaceID:    entry.WorkspaceID,
			MatchedVia:     MatchedVia(entry.MatchedVia),
		})
	}

	return conversations, attributions, nil
}

// Clear removes the index and every cached conversation.
func (cm *CacheManager) Clear() error {
	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Conversations {
			_ = os.Remove(cm.conversationPath(entry.ID))
		}
	}

	if err := os.Remove(cm.indexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
