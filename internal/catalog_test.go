package internal

import (
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]Workspace{
		{ID: "ws1", RootPaths: []string{"/home/user/alpha"}},
		{ID: "ws2", RootPaths: []string{"/home/user/alpha/nested"}},
		{ID: "ws3", RootPaths: []string{"/home/user/beta", "/srv/shared"}},
	})
}

func TestLongestPrefixMatch(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name   string
		path   string
		wantID string
		wantOK bool
	}{
		{"exact root", "/home/user/alpha", "ws1", true},
		{"file under root", "/home/user/alpha/main.go", "ws1", true},
		{"longest root wins", "/home/user/alpha/nested/x.go", "ws2", true},
		{"second root of workspace", "/srv/shared/data.csv", "ws3", true},
		{"no match", "/opt/elsewhere", "", false},
		{"empty path", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := catalog.LongestPrefixMatch(tt.path)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("LongestPrefixMatch(%q) = (%q, %v), want (%q, %v)", tt.path, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestLongestPrefixMatchNoBoundaryCheck(t *testing.T) {
	catalog := NewCatalog([]Workspace{
		{ID: "bee", RootPaths: []string{"/a/bee"}},
	})

	// Raw prefix semantics: /a/bee also claims /a/beetle/x.
	id, ok := catalog.LongestPrefixMatch("/a/beetle/x")
	if !ok || id != "bee" {
		t.Errorf("LongestPrefixMatch(/a/beetle/x) = (%q, %v), want (bee, true)", id, ok)
	}
}

func TestLongestPrefixMatchTieOrder(t *testing.T) {
	// Two workspaces with identical roots: the earlier catalog entry wins.
	catalog := NewCatalog([]Workspace{
		{ID: "first", RootPaths: []string{"/home/user/same"}},
		{ID: "second", RootPaths: []string{"/home/user/same"}},
	})

	id, ok := catalog.LongestPrefixMatch("/home/user/same/file.go")
	if !ok || id != "first" {
		t.Errorf("tie should resolve to first entry, got (%q, %v)", id, ok)
	}
}

func TestBasenameMatchFirstWriterWins(t *testing.T) {
	catalog := NewCatalog([]Workspace{
		{ID: "ws1", RootPaths: []string{"/home/a/proj"}},
		{ID: "ws2", RootPaths: []string{"/home/b/proj"}},
	})

	id, ok := catalog.BasenameMatch("proj")
	if !ok || id != "ws1" {
		t.Errorf("BasenameMatch(proj) = (%q, %v), want (ws1, true)", id, ok)
	}

	if _, ok := catalog.BasenameMatch("missing"); ok {
		t.Error("BasenameMatch(missing) should not match")
	}
	if _, ok := catalog.BasenameMatch(""); ok {
		t.Error("BasenameMatch of empty string should not match")
	}
}

func TestCatalogNormalizesRoots(t *testing.T) {
	catalog := NewCatalog([]Workspace{
		{ID: "ws1", RootPaths: []string{"file:///home/user/my%20proj"}},
	})

	id, ok := catalog.LongestPrefixMatch("/home/user/my proj/file.go")
	if !ok || id != "ws1" {
		t.Errorf("normalized root should match decoded path, got (%q, %v)", id, ok)
	}
}

func TestCatalogBasenames(t *testing.T) {
	catalog := testCatalog()

	entries := catalog.Basenames()
	want := []BasenameEntry{
		{Basename: "alpha", WorkspaceID: "ws1"},
		{Basename: "nested", WorkspaceID: "ws2"},
		{Basename: "beta", WorkspaceID: "ws3"},
		{Basename: "shared", WorkspaceID: "ws3"},
	}

	if len(entries) != len(want) {
		t.Fatalf("Basenames() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("Basenames()[%d] = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestWorkspaceDisplayName(t *testing.T) {
	tests := []struct {
		name string
		ws   Workspace
		want string
	}{
		{"from first root", Workspace{ID: "abc", RootPaths: []string{"/home/u/proj"}}, "proj"},
		{"falls back to id", Workspace{ID: "abc"}, "abc"},
		{"file uri root", Workspace{ID: "abc", RootPaths: []string{"file:///home/u/proj"}}, "proj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ws.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
