package internal

// MatchedVia tags how an attribution was decided. Diagnostic only; behavior
// never branches on it.
type MatchedVia string

const (
	MatchDirect           MatchedVia = "direct"
	MatchDeclaredPath     MatchedVia = "declared-path"
	MatchDeclaredBasename MatchedVia = "declared-basename"
	MatchReferencedPath   MatchedVia = "referenced-path"
	MatchSegment          MatchedVia = "segment-heuristic"
	MatchNone             MatchedVia = "none"
)

// UnassignedWorkspace is the reserved bucket for conversations that resolve
// to no workspace.
const UnassignedWorkspace = "unassigned"

// Attribution assigns one conversation to one workspace, or to the
// unassigned bucket.
type Attribution struct {
	ConversationID string     `json:"conversationId" yaml:"conversation_id"`
	WorkspaceID    string     `json:"workspaceId" yaml:"workspace_id"`
	MatchedVia     MatchedVia `json:"matchedVia" yaml:"matched_via"`
}

// Unassigned reports whether the attribution landed in the reserved bucket.
func (a Attribution) Unassigned() bool {
	return a.WorkspaceID == UnassignedWorkspace
}

// Resolve attributes a conversation to exactly one workspace using a strict
// priority chain of heuristics, in order, returning on first success:
//
//  1. the definitive per-workspace composer index (ground truth);
//  2. declared project root paths by longest catalog prefix, re-ranked by
//     path specificity, then by declared-path basename;
//  3. referenced file paths (created files, code-block keys, attachments) by
//     catalog prefix, first hit in extraction order;
//  4. the segment heuristic: any collected path containing a workspace root
//     basename as a whole segment, longest basename winning;
//  5. the unassigned bucket.
//
// Resolve is pure over its inputs and never fails: malformed signal data
// degrades to "no signal".
func Resolve(rec *ConversationRecord, catalog *Catalog) Attribution {
	att := Attribution{WorkspaceID: UnassignedWorkspace, MatchedVia: MatchNone}
	if rec == nil {
		return att
	}
	att.ConversationID = rec.ID

	if rec.DirectWorkspaceID != "" {
		att.WorkspaceID = rec.DirectWorkspaceID
		att.MatchedVia = MatchDirect
		return att
	}

	if catalog == nil {
		return att
	}

	signals := ExtractSignals(rec)

	// Declared roots: try every declared path and keep the match whose
	// normalized path string is the longest, not merely the first hit.
	// A session rooted at /home/u/proj/sub is more specific than one
	// rooted at /home/u.
	bestLen := -1
	bestID := ""
	for _, sig := range signals.Declared {
		if id, ok := catalog.LongestPrefixMatch(sig.Normalized); ok {
			if len(sig.Normalized) > bestLen {
				bestLen = len(sig.Normalized)
				bestID = id
			}
		}
	}
	if bestLen >= 0 {
		att.WorkspaceID = bestID
		att.MatchedVia = MatchDeclaredPath
		return att
	}

	for _, sig := range signals.Declared {
		if id, ok := catalog.BasenameMatch(sig.Basename); ok {
			att.WorkspaceID = id
			att.MatchedVia = MatchDeclaredBasename
			return att
		}
	}

	for _, sig := range signals.Referenced {
		if id, ok := catalog.LongestPrefixMatch(sig.Normalized); ok {
			att.WorkspaceID = id
			att.MatchedVia = MatchReferencedPath
			return att
		}
	}

	if id, ok := segmentMatch(signals.AllNormalized(), catalog); ok {
		att.WorkspaceID = id
		att.MatchedVia = MatchSegment
		return att
	}

	return att
}

// segmentMatch tests every workspace root basename against every collected
// path and keeps the longest matching basename; longer folder names are
// assumed more specific. Ties resolve to the earlier catalog entry.
func segmentMatch(paths []string, catalog *Catalog) (string, bool) {
	bestLen := 0
	bestID := ""
	for _, entry := range catalog.Basenames() {
		if len(entry.Basename) <= bestLen {
			continue
		}
		for _, p := range paths {
			if ContainsSegment(p, entry.Basename) {
				bestLen = len(entry.Basename)
				bestID = entry.WorkspaceID
				break
			}
		}
	}
	if bestLen == 0 {
		return "", false
	}
	return bestID, true
}

// ResolveAll attributes every record against the shared catalog. Records are
// independent; the catalog is never mutated.
func ResolveAll(records []*ConversationRecord, catalog *Catalog) []Attribution {
	attributions := make([]Attribution, 0, len(records))
	for _, rec := range records {
		attributions = append(attributions, Resolve(rec, catalog))
	}
	return attributions
}
