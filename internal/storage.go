package internal

import "database/sql"

// Storage extracts raw conversation data from the global cursorDiskKV store.
// Malformed rows are skipped, never fatal: every loader returns whatever
// parsed cleanly.
type Storage struct {
	db *sql.DB
}

// NewStorage creates a Storage over an open database handle.
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// LoadBubbles loads all message bubbles keyed by bubble id.
func (s *Storage) LoadBubbles() (map[string]*RawBubble, error) {
	pairs, err := QueryCursorDiskKV(s.db, "bubbleId:%")
	if err != nil {
		return nil, err
	}

	bubbles := make(map[string]*RawBubble, len(pairs))
	for _, pair := range pairs {
		bubble, err := ParseRawBubble(pair.Key, pair.Value)
		if err != nil {
			LogDebug("Skipping bubble %s: %v", pair.Key, err)
			continue
		}
		bubbles[bubble.BubbleID] = bubble
	}

	return bubbles, nil
}

// LoadComposers loads all composer sessions.
func (s *Storage) LoadComposers() ([]*RawComposer, error) {
	pairs, err := QueryCursorDiskKV(s.db, "composerData:%")
	if err != nil {
		return nil, err
	}

	composers := make([]*RawComposer, 0, len(pairs))
	for _, pair := range pairs {
		composer, err := ParseRawComposer(pair.Key, pair.Value)
		if err != nil {
			LogDebug("Skipping composer %s: %v", pair.Key, err)
			continue
		}
		composers = append(composers, composer)
	}

	return composers, nil
}

// LoadMessageContexts loads all request contexts grouped by composer id.
func (s *Storage) LoadMessageContexts() (map[string][]*MessageContext, error) {
	pairs, err := QueryCursorDiskKV(s.db, "messageRequestContext:%")
	if err != nil {
		return nil, err
	}

	contexts := make(map[string][]*MessageContext)
	for _, pair := range pairs {
		context, err := ParseMessageContext(pair.Key, pair.Value)
		if err != nil {
			LogDebug("Skipping context %s: %v", pair.Key, err)
			continue
		}
		contexts[context.ComposerID] = append(contexts[context.ComposerID], context)
	}

	return contexts, nil
}

// LoadCodeBlockDiffs loads all code-edit diffs grouped by chat id.
func (s *Storage) LoadCodeBlockDiffs() (map[string][]*CodeBlockDiff, error) {
	pairs, err := QueryCursorDiskKV(s.db, "codeBlockDiff:%")
	if err != nil {
		return nil, err
	}

	diffs := make(map[string][]*CodeBlockDiff)
	for _, pair := range pairs {
		diff, err := ParseCodeBlockDiff(pair.Key, pair.Value)
		if err != nil {
			LogDebug("Skipping diff %s: %v", pair.Key, err)
			continue
		}
		diffs[diff.ChatID] = append(diffs[diff.ChatID], diff)
	}

	return diffs, nil
}

// LoadRecords loads everything and assembles the per-conversation record
// views in one pass. directIndex optionally maps composer ids to workspace
// ids from the per-workspace authoritative indices.
func (s *Storage) LoadRecords(directIndex map[string]string) ([]*ConversationRecord, map[string][]*CodeBlockDiff, error) {
	bubbles, err := s.LoadBubbles()
	if err != nil {
		return nil, nil, err
	}
	composers, err := s.LoadComposers()
	if err != nil {
		return nil, nil, err
	}
	contexts, err := s.LoadMessageContexts()
	if err != nil {
		return nil, nil, err
	}
	diffs, err := s.LoadCodeBlockDiffs()
	if err != nil {
		return nil, nil, err
	}

	records := BuildRecords(composers, bubbles, contexts, directIndex)
	return records, diffs, nil
}

// BuildRecords joins composers with their bubbles (in header order), request
// contexts, and any definitive workspace mapping. Bubbles referenced by a
// header but missing from the store are skipped.
func BuildRecords(
	composers []*RawComposer,
	bubbles map[string]*RawBubble,
	contexts map[string][]*MessageContext,
	directIndex map[string]string,
) []*ConversationRecord {
	records := make([]*ConversationRecord, 0, len(composers))

	for _, composer := range composers {
		if composer == nil {
			continue
		}

		rec := &ConversationRecord{
			ID:        composer.ComposerID,
			Name:      composer.Name,
			Composer:  composer,
			Contexts:  contexts[composer.ComposerID],
			CreatedAt: composer.CreatedAt,
			UpdatedAt: composer.LastUpdatedAt,
			Cost:      composer.TotalCost,
		}

		if directIndex != nil {
			rec.DirectWorkspaceID = directIndex[composer.ComposerID]
		}

		for _, header := range composer.FullConversationHeadersOnly {
			bubble, ok := bubbles[header.BubbleID]
			if !ok {
				LogDebug("Bubble %s referenced by composer %s not found", header.BubbleID, composer.ComposerID)
				continue
			}
			if bubble.Type == 0 {
				bubble.Type = header.Type
			}
			rec.Bubbles = append(rec.Bubbles, bubble)
		}

		rec.DeclaredRootPaths = declaredRoots(rec.Contexts)
		records = append(records, rec)
	}

	return records
}

// declaredRoots collects project root paths from request contexts in capture
// order, dropping duplicates.
func declaredRoots(contexts []*MessageContext) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, ctx := range contexts {
		if ctx == nil {
			continue
		}
		for _, layout := range ctx.ProjectLayouts {
			if layout == "" || seen[layout] {
				continue
			}
			seen[layout] = true
			roots = append(roots, layout)
		}
	}
	return roots
}
