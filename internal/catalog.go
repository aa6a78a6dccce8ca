package internal

import "strings"

// Workspace describes one development workspace known to the editor. A
// workspace may own several root folders (multi-root setups).
type Workspace struct {
	ID        string
	RootPaths []string
}

// DisplayName returns a human-readable name for the workspace, derived from
// its first root folder.
func (w Workspace) DisplayName() string {
	if len(w.RootPaths) > 0 {
		if name := PathBasename(NormalizePath(w.RootPaths[0])); name != "" {
			return name
		}
	}
	return w.ID
}

type catalogRoot struct {
	workspaceID string
	normalized  string
	basename    string
}

// BasenameEntry pairs a workspace root's basename with its owning workspace,
// in catalog input order.
type BasenameEntry struct {
	Basename    string
	WorkspaceID string
}

// Catalog is an immutable index over workspace roots. It is built once per
// run and shared read-only by every attribution.
type Catalog struct {
	workspaces []Workspace
	roots      []catalogRoot
	byBasename map[string]string
}

// NewCatalog builds the lookup indices from workspace descriptors. Roots are
// normalized on the way in; input order is preserved for tie-breaking. When
// two roots across workspaces share a basename, the first writer wins and
// later entries are ignored.
func NewCatalog(workspaces []Workspace) *Catalog {
	c := &Catalog{
		workspaces: workspaces,
		byBasename: make(map[string]string),
	}

	for _, ws := range workspaces {
		for _, root := range ws.RootPaths {
			norm := NormalizePath(root)
			if norm == "" {
				continue
			}
			base := PathBasename(norm)
			c.roots = append(c.roots, catalogRoot{
				workspaceID: ws.ID,
				normalized:  norm,
				basename:    base,
			})
			if base != "" {
				if _, taken := c.byBasename[base]; !taken {
					c.byBasename[base] = ws.ID
				}
			}
		}
	}

	return c
}

// LongestPrefixMatch finds the workspace whose root is the longest string
// prefix of the given normalized path. Ties go to the earliest root in input
// order. Note this is a raw prefix test with no path-boundary check: a root
// "/a/bee" also matches "/a/beetle/x". That mirrors the editor's own matching
// and is kept for compatibility.
func (c *Catalog) LongestPrefixMatch(normalizedPath string) (string, bool) {
	if normalizedPath == "" {
		return "", false
	}

	bestLen := -1
	bestID := ""
	for _, r := range c.roots {
		if len(r.normalized) > bestLen && strings.HasPrefix(normalizedPath, r.normalized) {
			bestLen = len(r.normalized)
			bestID = r.workspaceID
		}
	}

	if bestLen < 0 {
		return "", false
	}
	return bestID, true
}

// BasenameMatch looks up a workspace by the final segment of one of its
// roots.
func (c *Catalog) BasenameMatch(basename string) (string, bool) {
	if basename == "" {
		return "", false
	}
	id, ok := c.byBasename[basename]
	return id, ok
}

// Basenames returns every (root basename, workspace id) pair in input order.
// Duplicate basenames keep only their first occurrence, matching the basename
// index.
func (c *Catalog) Basenames() []BasenameEntry {
	seen := make(map[string]bool, len(c.roots))
	entries := make([]BasenameEntry, 0, len(c.roots))
	for _, r := range c.roots {
		if r.basename == "" || seen[r.basename] {
			continue
		}
		seen[r.basename] = true
		entries = append(entries, BasenameEntry{Basename: r.basename, WorkspaceID: c.byBasename[r.basename]})
	}
	return entries
}

// Workspaces returns the catalog's workspace descriptors in input order.
func (c *Catalog) Workspaces() []Workspace {
	return c.workspaces
}

// Len returns the number of workspaces in the catalog.
func (c *Catalog) Len() int {
	return len(c.workspaces)
}
