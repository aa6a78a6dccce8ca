package internal

import (
	"net/url"
	"runtime"
	"strings"
)

// NormalizePath canonicalizes the many path shapes Cursor stores (file://
// URIs, percent-escaped paths, mixed separators) into one comparable form.
// On Windows the result is backslash-separated and case-folded; elsewhere it
// stays slash-based and case-sensitive. The function is total: malformed
// input degrades to best-effort normalization, it never fails.
func NormalizePath(raw string) string {
	return normalizePathFor(raw, runtime.GOOS == "windows")
}

func normalizePathFor(raw string, backslash bool) string {
	p := raw

	// file:///home/u/x and file://host/x both reduce to the path part.
	if strings.HasPrefix(p, "file://") {
		p = p[len("file://"):]
	}

	// Escapes decode once per pass. The editor stores at most singly-encoded
	// paths, so normalization is a fixed point for its inputs; doubly-encoded
	// text loses one level each pass.
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	if backslash {
		p = strings.ReplaceAll(p, "/", "\\")
		// file:///c:/x arrives here as \c:\x; drop the stray separator.
		if len(p) >= 3 && p[0] == '\\' && isDriveLetter(p[1]) && p[2] == ':' {
			p = p[1:]
		}
		p = strings.ToLower(p)
	}

	return p
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// PathBasename returns the last segment of a path, tolerating both separator
// styles and trailing separators. Empty input yields an empty string.
func PathBasename(p string) string {
	p = strings.TrimRight(p, "/\\")
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ContainsSegment reports whether segment occurs in path as a complete path
// segment: bounded by a separator (or the string edge) on both sides.
func ContainsSegment(path, segment string) bool {
	if segment == "" || len(segment) > len(path) {
		return false
	}
	for start := 0; ; {
		i := strings.Index(path[start:], segment)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(segment)
		beforeOK := i == 0 || isPathSep(path[i-1])
		afterOK := end == len(path) || isPathSep(path[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isPathSep(c byte) bool {
	return c == '/' || c == '\\'
}
