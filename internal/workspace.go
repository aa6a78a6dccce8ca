package internal

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/muhammadmuzzammil1998/jsonc"
)

// workspaceMeta is the shape of workspaceStorage/<hash>/workspace.json.
// Exactly one of Folder (single-root) or Workspace (a .code-workspace file)
// is normally set. The file is JSONC: the editor writes comments and
// trailing commas into it.
type workspaceMeta struct {
	Folder    string `json:"folder"`
	Workspace string `json:"workspace"`
}

// codeWorkspaceFile is the shape of a .code-workspace file.
type codeWorkspaceFile struct {
	Folders []struct {
		Path string `json:"path"`
		URI  string `json:"uri"`
	} `json:"folders"`
}

// DetectWorkspaces scans workspaceStorage under the editor's user directory
// and returns one Workspace per hash directory, in directory order. A missing
// workspaceStorage directory yields an empty catalog, not an error; unreadable
// or malformed metadata yields a workspace with no roots (it can still be
// matched via the direct composer index).
func DetectWorkspaces(basePath string) ([]Workspace, error) {
	workspaceStorage := filepath.Join(basePath, "workspaceStorage")

	entries, err := os.ReadDir(workspaceStorage)
	if err != nil {
		return nil, nil
	}

	var workspaces []Workspace
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		hash := entry.Name()
		ws := Workspace{ID: hash}

		metaPath := filepath.Join(workspaceStorage, hash, "workspace.json")
		if data, err := os.ReadFile(metaPath); err == nil {
			ws.RootPaths = rootsFromMeta(data, filepath.Dir(metaPath))
		}

		workspaces = append(workspaces, ws)
	}

	return workspaces, nil
}

// rootsFromMeta extracts root folder paths from a workspace.json payload.
func rootsFromMeta(data []byte, metaDir string) []string {
	var meta workspaceMeta
	if err := json.Unmarshal(jsonc.ToJSON(data), &meta); err != nil {
		LogDebug("Skipping unreadable workspace metadata in %s: %v", metaDir, err)
		return nil
	}

	if meta.Folder != "" {
		return []string{meta.Folder}
	}

	if meta.Workspace != "" {
		return rootsFromCodeWorkspace(meta.Workspace)
	}

	return nil
}

// rootsFromCodeWorkspace reads a multi-root .code-workspace file and returns
// its folder paths, resolving relative entries against the file's directory.
func rootsFromCodeWorkspace(ref string) []string {
	path := NormalizePath(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		LogDebug("Cannot read code-workspace file %s: %v", path, err)
		return nil
	}

	var cw codeWorkspaceFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &cw); err != nil {
		LogDebug("Cannot parse code-workspace file %s: %v", path, err)
		return nil
	}

	var roots []string
	dir := filepath.Dir(path)
	for _, folder := range cw.Folders {
		switch {
		case folder.URI != "":
			roots = append(roots, folder.URI)
		case folder.Path == "":
		case filepath.IsAbs(folder.Path):
			roots = append(roots, folder.Path)
		default:
			roots = append(roots, filepath.Join(dir, folder.Path))
		}
	}
	return roots
}

// composerIndex is the shape of the composer.composerData value stored in a
// per-workspace ItemTable. It definitively lists which composer sessions
// belong to that workspace.
type composerIndex struct {
	AllComposers []struct {
		ComposerID string `json:"composerId"`
	} `json:"allComposers"`
}

// LoadDirectComposerIndex reads each workspace's own state.vscdb and builds
// the authoritative composer-id to workspace-id map. This is ground truth:
// when a conversation appears here, every path heuristic is bypassed.
// Workspaces without a readable database are skipped silently.
func LoadDirectComposerIndex(basePath string, workspaces []Workspace) map[string]string {
	direct := make(map[string]string)
	workspaceStorage := filepath.Join(basePath, "workspaceStorage")

	for _, ws := range workspaces {
		dbPath := filepath.Join(workspaceStorage, ws.ID, "state.vscdb")
		if _, err := os.Stat(dbPath); err != nil {
			continue
		}

		db, err := OpenDatabase(dbPath)
		if err != nil {
			LogDebug("Cannot open workspace database %s: %v", dbPath, err)
			continue
		}

		value, ok, err := QueryItemTableValue(db, "composer.composerData")
		db.Close()
		if err != nil || !ok {
			if err != nil {
				LogDebug("Cannot read composer index from %s: %v", dbPath, err)
			}
			continue
		}

		var index composerIndex
		if err := json.Unmarshal([]byte(value), &index); err != nil {
			LogDebug("Cannot parse composer index from %s: %v", dbPath, err)
			continue
		}

		for _, c := range index.AllComposers {
			if c.ComposerID == "" {
				continue
			}
			// First workspace to claim a composer keeps it.
			if _, taken := direct[c.ComposerID]; !taken {
				direct[c.ComposerID] = ws.ID
			}
		}
	}

	return direct
}
