package internal

// PathSignal is one candidate path pulled from a conversation record, carried
// in raw, normalized, and basename form.
type PathSignal struct {
	Raw        string
	Normalized string
	Basename   string
}

// Signals holds every path hint extracted from a record, in strict precedence
// order. Declared paths come from the session's own captured project context;
// Referenced paths come from message fragments: created files first, then
// inline code-block file keys, then per-fragment relevant files, attached
// chunks, and selections, scanned in fragment order, then per-request-context
// file selections and terminal files in context order.
type Signals struct {
	Declared   []PathSignal
	Referenced []PathSignal
}

// ExtractSignals pulls every candidate path out of a conversation record.
// Missing or malformed fields are skipped; extraction never fails.
func ExtractSignals(rec *ConversationRecord) Signals {
	var sig Signals
	if rec == nil {
		return sig
	}

	for _, p := range rec.DeclaredRootPaths {
		if s, ok := newPathSignal(p); ok {
			sig.Declared = append(sig.Declared, s)
		}
	}

	if rec.Composer != nil {
		for _, cf := range rec.Composer.NewlyCreatedFiles {
			if s, ok := newPathSignal(cf.PathValue()); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
	}

	for _, bubble := range rec.Bubbles {
		for _, cb := range bubble.CodeBlocks {
			if s, ok := newPathSignal(cb.URI.Value()); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
	}

	for _, bubble := range rec.Bubbles {
		for _, p := range bubble.RelevantFiles {
			if s, ok := newPathSignal(p); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
		for _, p := range bubble.AttachedFileCodeChunksUris {
			if s, ok := newPathSignal(p); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
		for _, fs := range bubble.FileSelections {
			if s, ok := newPathSignal(fs.PathValue()); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
	}

	for _, ctx := range rec.Contexts {
		if ctx == nil {
			continue
		}
		for _, fs := range ctx.FileSelections {
			if s, ok := newPathSignal(fs.PathValue()); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
		for _, p := range ctx.TerminalFiles {
			if s, ok := newPathSignal(p); ok {
				sig.Referenced = append(sig.Referenced, s)
			}
		}
	}

	return sig
}

// AllNormalized flattens every collected path, declared first, for the
// segment heuristic.
func (s Signals) AllNormalized() []string {
	paths := make([]string, 0, len(s.Declared)+len(s.Referenced))
	for _, sig := range s.Declared {
		paths = append(paths, sig.Normalized)
	}
	for _, sig := range s.Referenced {
		paths = append(paths, sig.Normalized)
	}
	return paths
}

func newPathSignal(raw string) (PathSignal, bool) {
	if raw == "" {
		return PathSignal{}, false
	}
	norm := NormalizePath(raw)
	if norm == "" {
		return PathSignal{}, false
	}
	return PathSignal{
		Raw:        raw,
		Normalized: norm,
		Basename:   PathBasename(norm),
	}, true
}
