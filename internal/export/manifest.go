package export

import (
	"io"
	"sort"
	"time"

	"github.com/qorvid/cursor-atlas/internal"
	"gopkg.in/yaml.v3"
)

// Manifest describes one export run: which conversations were written, under
// which workspace, in which format.
type Manifest struct {
	RunID      string              `yaml:"run_id"`
	ExportedAt time.Time           `yaml:"exported_at"`
	Format     string              `yaml:"format"`
	Workspaces []ManifestWorkspace `yaml:"workspaces"`
}

// ManifestWorkspace is one workspace bucket in the manifest.
type ManifestWorkspace struct {
	WorkspaceID   string             `yaml:"workspace_id"`
	Conversations []ManifestConvItem `yaml:"conversations"`
}

// ManifestConvItem is one exported conversation.
type ManifestConvItem struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title,omitempty"`
	Messages int    `yaml:"messages"`
	File     string `yaml:"file"`
}

// BuildManifest summarizes grouped conversations for a run. Workspace
// buckets are ordered by id, with the unassigned bucket last; conversations
// keep their bucket order (most recent first). fileFor maps a conversation to
// the relative path it was written to.
func BuildManifest(runID, format string, groups map[string][]*internal.Conversation, fileFor func(workspaceID string, conv *internal.Conversation) string) Manifest {
	m := Manifest{
		RunID:      runID,
		ExportedAt: time.Now().UTC(),
		Format:     format,
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if (ids[i] == internal.UnassignedWorkspace) != (ids[j] == internal.UnassignedWorkspace) {
			return ids[j] == internal.UnassignedWorkspace
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		mw := ManifestWorkspace{WorkspaceID: id}
		for _, conv := range groups[id] {
			mw.Conversations = append(mw.Conversations, ManifestConvItem{
				ID:       conv.ID,
				Title:    conv.Title,
				Messages: len(conv.Messages),
				File:     fileFor(id, conv),
			})
		}
		m.Workspaces = append(m.Workspaces, mw)
	}

	return m
}

// WriteManifest serializes the manifest as YAML.
func WriteManifest(m Manifest, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(m)
}
