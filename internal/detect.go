package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// StoragePaths holds the detected locations of the editor's storage.
type StoragePaths struct {
	BasePath         string // Cursor User directory
	WorkspaceStorage string // workspaceStorage directory
	GlobalStorage    string // globalStorage directory
}

// DetectStoragePaths locates the Cursor storage directories for the current
// operating system.
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var basePath string
	switch runtime.GOOS {
	case "darwin":
		basePath = filepath.Join(home, "Library/Application Support/Cursor/User")
	case "linux":
		basePath = filepath.Join(home, ".config/Cursor/User")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		basePath = filepath.Join(appData, "Cursor", "User")
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return storagePathsFor(basePath), nil
}

// GetStoragePaths resolves storage paths, honoring a custom location. The
// custom value may be the User directory itself, a directory containing a
// state.vscdb somewhere beneath it, or a direct path to a database file.
func GetStoragePaths(custom string) (StoragePaths, error) {
	if custom == "" {
		return DetectStoragePaths()
	}

	info, err := os.Stat(custom)
	if err != nil {
		return StoragePaths{}, &StorageError{Path: custom, Op: "open", Err: err}
	}

	if !info.IsDir() {
		// A database file: treat its directory as globalStorage.
		dir := filepath.Dir(custom)
		return StoragePaths{
			BasePath:         filepath.Dir(dir),
			WorkspaceStorage: filepath.Join(filepath.Dir(dir), "workspaceStorage"),
			GlobalStorage:    dir,
		}, nil
	}

	// Standard User layout?
	if _, err := os.Stat(filepath.Join(custom, "globalStorage", "state.vscdb")); err == nil {
		return storagePathsFor(custom), nil
	}

	// Otherwise search beneath the directory for a database.
	dbs, err := FindStateDBs(custom)
	if err != nil {
		return StoragePaths{}, err
	}
	if len(dbs) == 0 {
		return StoragePaths{}, &StorageError{Path: custom, Op: "scan", Err: fmt.Errorf("no state.vscdb found")}
	}

	dir := filepath.Dir(dbs[0])
	return StoragePaths{
		BasePath:         filepath.Dir(dir),
		WorkspaceStorage: filepath.Join(filepath.Dir(dir), "workspaceStorage"),
		GlobalStorage:    dir,
	}, nil
}

func storagePathsFor(basePath string) StoragePaths {
	return StoragePaths{
		BasePath:         basePath,
		WorkspaceStorage: filepath.Join(basePath, "workspaceStorage"),
		GlobalStorage:    filepath.Join(basePath, "globalStorage"),
	}
}

// GlobalDBPath returns the path to the global state.vscdb file.
func (sp StoragePaths) GlobalDBPath() string {
	return filepath.Join(sp.GlobalStorage, "state.vscdb")
}

// GlobalStorageExists checks whether the global database is present.
func (sp StoragePaths) GlobalStorageExists() bool {
	_, err := os.Stat(sp.GlobalDBPath())
	return err == nil
}

// FindStateDBs globs for state.vscdb files anywhere under root, shallowest
// first so a top-level globalStorage wins over per-workspace copies.
func FindStateDBs(root string) ([]string, error) {
	pattern := filepath.Join(root, "**", "state.vscdb")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &StorageError{Path: root, Op: "scan", Err: err}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		as, bs := countSeparators(a), countSeparators(b)
		if as != bs {
			return as < bs
		}
		return a < b
	})
	return matches, nil
}

func countSeparators(p string) int {
	n := 0
	for i := 0; i < len(p); i++ {
		if os.IsPathSeparator(p[i]) {
			n++
		}
	}
	return n
}

// CopyStoragePaths copies the global database to a temporary directory so
// reads never contend with a running editor holding the file locked. The
// returned cleanup removes the copies.
func CopyStoragePaths(paths StoragePaths) (StoragePaths, func() error, error) {
	tmpDir, err := os.MkdirTemp("", "cursor-atlas-db-*")
	if err != nil {
		return paths, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(tmpDir) }

	copied := paths
	if paths.GlobalStorageExists() {
		dst := filepath.Join(tmpDir, "globalStorage")
		if err := os.MkdirAll(dst, 0o755); err != nil {
			_ = cleanup()
			return paths, nil, err
		}
		if err := copyFile(paths.GlobalDBPath(), filepath.Join(dst, "state.vscdb")); err != nil {
			_ = cleanup()
			return paths, nil, err
		}
		copied.GlobalStorage = dst
	}

	return copied, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &StorageError{Path: src, Op: "read", Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &StorageError{Path: dst, Op: "open", Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &StorageError{Path: dst, Op: "read", Err: err}
	}
	return out.Sync()
}
