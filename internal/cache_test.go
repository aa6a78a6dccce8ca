package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qorvid/cursor-atlas/testutil"
)

func cacheFixture(t *testing.T) (*CacheManager, string) {
	t.Helper()
	dir := testutil.CreateTempDir(t)

	dbPath := filepath.Join(dir, "state.vscdb")
	if err := os.WriteFile(dbPath, []byte("fake db"), 0o644); err != nil {
		t.Fatalf("write fake db: %v", err)
	}

	return NewCacheManager(filepath.Join(dir, "cache")), dbPath
}

func sampleConversations() ([]*Conversation, []Attribution) {
	conversations := []*Conversation{
		{
			ID:        "conv-1",
			Title:     "First",
			CreatedAt: 1000,
			UpdatedAt: 2000,
			Messages: []Message{
				{Role: RoleUser, Content: "q", Timestamp: 1000},
				{Role: RoleAssistant, Content: "a", Timestamp: 1500, Model: "m"},
			},
			Metrics: &Metrics{InputTokens: 10, TotalCost: 0.1, Models: []string{"m"}},
		},
		{
			ID:       "conv-2",
			Title:    "Second",
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		},
	}
	attributions := []Attribution{
		{ConversationID: "conv-1", WorkspaceID: "ws1", MatchedVia: MatchDirect},
		{ConversationID: "conv-2", WorkspaceID: UnassignedWorkspace, MatchedVia: MatchNone},
	}
	return conversations, attributions
}

func TestCacheRoundtrip(t *testing.T) {
	cm, dbPath := cacheFixture(t)
	conversations, attributions := sampleConversations()

	if err := cm.Save(conversations, attributions, dbPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !cm.IsValid(dbPath) {
		t.Error("cache should be valid immediately after save")
	}

	loaded, loadedAtts, err := cm.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(loaded) != 2 || len(loadedAtts) != 2 {
		t.Fatalf("loaded %d conversations, %d attributions", len(loaded), len(loadedAtts))
	}

	if loaded[0].ID != "conv-1" || loaded[0].Title != "First" {
		t.Errorf("loaded[0] = %+v", loaded[0])
	}
	if len(loaded[0].Messages) != 2 || loaded[0].Messages[1].Model != "m" {
		t.Errorf("messages not preserved: %+v", loaded[0].Messages)
	}
	if loaded[0].Metrics == nil || loaded[0].Metrics.InputTokens != 10 {
		t.Errorf("metrics not preserved: %+v", loaded[0].Metrics)
	}

	if loadedAtts[0].WorkspaceID != "ws1" || loadedAtts[0].MatchedVia != MatchDirect {
		t.Errorf("attribution not preserved: %+v", loadedAtts[0])
	}
	if loadedAtts[1].WorkspaceID != UnassignedWorkspace {
		t.Errorf("unassigned attribution not preserved: %+v", loadedAtts[1])
	}
}

func TestCacheInvalidatedByDBChange(t *testing.T) {
	cm, dbPath := cacheFixture(t)
	conversations, attributions := sampleConversations()

	if err := cm.Save(conversations, attributions, dbPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Bump the database's mtime well past the recorded one.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(dbPath, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if cm.IsValid(dbPath) {
		t.Error("cache should be invalid after the database changed")
	}
}

func TestCacheInvalidatedByDifferentPath(t *testing.T) {
	cm, dbPath := cacheFixture(t)
	conversations, attributions := sampleConversations()

	if err := cm.Save(conversations, attributions, dbPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if cm.IsValid(dbPath + ".other") {
		t.Error("cache should not validate against a different database path")
	}
}

func TestCacheMissingIndex(t *testing.T) {
	cm := NewCacheManager(filepath.Join(testutil.CreateTempDir(t), "never-written"))
	if cm.IsValid("/anything") {
		t.Error("empty cache dir should be invalid")
	}
	if _, _, err := cm.LoadAll(); err == nil {
		t.Error("LoadAll() on missing index should fail")
	}
}

func TestCacheClear(t *testing.T) {
	cm, dbPath := cacheFixture(t)
	conversations, attributions := sampleConversations()

	if err := cm.Save(conversations, attributions, dbPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := cm.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if cm.IsValid(dbPath) {
		t.Error("cache should be invalid after Clear")
	}
	if _, err := cm.LoadConversation("conv-1"); err == nil {
		t.Error("conversation payloads should be removed by Clear")
	}

	// Clearing an already-empty cache is fine.
	if err := cm.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
