package internal

import "sort"

// GroupByWorkspace buckets assembled conversations by their attributed
// workspace. Conversations without an attribution, or attributed to no
// workspace, land in the UnassignedWorkspace bucket. Within a bucket,
// conversations are ordered most-recently-updated first. No matching logic
// happens here; it is a pure grouping and sorting pass.
func GroupByWorkspace(conversations []*Conversation, attributions []Attribution) map[string][]*Conversation {
	byConversation := make(map[string]string, len(attributions))
	for _, att := range attributions {
		byConversation[att.ConversationID] = att.WorkspaceID
	}

	groups := make(map[string][]*Conversation)
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		workspaceID, ok := byConversation[conv.ID]
		if !ok || workspaceID == "" {
			workspaceID = UnassignedWorkspace
		}
		groups[workspaceID] = append(groups[workspaceID], conv)
	}

	for _, bucket := range groups {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].LastActivity() > bucket[j].LastActivity()
		})
	}

	return groups
}

// GroupSummary counts one workspace bucket.
type GroupSummary struct {
	WorkspaceID   string
	Conversations int
	Messages      int
}

// SummarizeGroups produces per-bucket counts, largest bucket first, ties
// broken by workspace id for stable output. The unassigned bucket always
// sorts last.
func SummarizeGroups(groups map[string][]*Conversation) []GroupSummary {
	summaries := make([]GroupSummary, 0, len(groups))
	for id, bucket := range groups {
		s := GroupSummary{WorkspaceID: id, Conversations: len(bucket)}
		for _, conv := range bucket {
			s.Messages += len(conv.Messages)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if (a.WorkspaceID == UnassignedWorkspace) != (b.WorkspaceID == UnassignedWorkspace) {
			return b.WorkspaceID == UnassignedWorkspace
		}
		if a.Conversations != b.Conversations {
			return a.Conversations > b.Conversations
		}
		return a.WorkspaceID < b.WorkspaceID
	})

	return summaries
}
