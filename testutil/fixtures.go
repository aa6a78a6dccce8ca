package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// CreateWorkspaceFixture creates workspaceStorage/<hash>/workspace.json under
// basePath pointing at folder, and returns the workspace directory. The file
// is written as JSONC with a comment, matching what the editor produces.
func CreateWorkspaceFixture(t *testing.T, basePath, hash, folder string) string {
	t.Helper()
	dir := filepath.Join(basePath, "workspaceStorage", hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	content := fmt.Sprintf("{\n\t// workspace metadata\n\t\"folder\": %q,\n}\n", folder)
	if err := os.WriteFile(filepath.Join(dir, "workspace.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write workspace.json: %v", err)
	}

	return dir
}

// CreateCodeWorkspaceFixture creates a multi-root fixture: a .code-workspace
// file listing folders, and a workspace.json referencing it. Returns the
// workspace hash directory.
func CreateCodeWorkspaceFixture(t *testing.T, basePath, hash string, folders []string) string {
	t.Helper()
	dir := filepath.Join(basePath, "workspaceStorage", hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	cwPath := filepath.Join(dir, "test.code-workspace")
	cw := "{\n\t\"folders\": [\n"
	for i, f := range folders {
		cw += fmt.Sprintf("\t\t{\"path\": %q}", f)
		if i < len(folders)-1 {
			cw += ","
		}
		cw += "\n"
	}
	cw += "\t],\n}\n"
	if err := os.WriteFile(cwPath, []byte(cw), 0o644); err != nil {
		t.Fatalf("Failed to write code-workspace file: %v", err)
	}

	meta := fmt.Sprintf("{\"workspace\": %q}\n", cwPath)
	if err := os.WriteFile(filepath.Join(dir, "workspace.json"), []byte(meta), 0o644); err != nil {
		t.Fatalf("Failed to write workspace.json: %v", err)
	}

	return dir
}

// CreateWorkspaceDBFixture writes a per-workspace state.vscdb whose composer
// index claims the given composer ids.
func CreateWorkspaceDBFixture(t *testing.T, basePath, hash string, composerIDs []string) {
	t.Helper()
	dir := filepath.Join(basePath, "workspaceStorage", hash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create workspace dir: %v", err)
	}

	db := CreateStateDBFile(t, filepath.Join(dir, "state.vscdb"))

	value := `{"allComposers":[`
	for i, id := range composerIDs {
		if i > 0 {
			value += ","
		}
		value += fmt.Sprintf(`{"composerId":%q}`, id)
	}
	value += `]}`
	InsertItem(t, db, "composer.composerData", value)
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close workspace db: %v", err)
	}
}
