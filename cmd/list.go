package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/qorvid/cursor-atlas/internal"
	"github.com/spf13/cobra"
)

var listClearCache bool

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	workspaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations grouped by workspace",
	Long:  `List all chat conversations from Cursor's storage, grouped by the workspace they were attributed to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listClearCache {
			if err := internal.NewCacheManager(cfg.CacheDir).Clear(); err != nil {
				internal.LogWarn("Failed to clear cache: %v", err)
			} else {
				internal.LogInfo("Cache cleared")
			}
		}

		result, err := runPipeline(true)
		if err != nil {
			return err
		}

		groups := internal.GroupByWorkspace(result.Conversations, result.Attributions)
		displayGroups(groups, result.Attributions, result.Catalog)
		return nil
	},
}

func displayGroups(groups map[string][]*internal.Conversation, attributions []internal.Attribution, catalog *internal.Catalog) {
	if len(groups) == 0 {
		fmt.Println(headerStyle.Render("No conversations found"))
		return
	}

	matchedVia := make(map[string]internal.MatchedVia, len(attributions))
	for _, att := range attributions {
		matchedVia[att.ConversationID] = att.MatchedVia
	}

	names := workspaceNames(catalog)

	total := 0
	for _, summary := range internal.SummarizeGroups(groups) {
		bucket := groups[summary.WorkspaceID]
		total += len(bucket)

		label := names[summary.WorkspaceID]
		if label == "" {
			label = summary.WorkspaceID
		}
		fmt.Println(workspaceStyle.Render(fmt.Sprintf("▸ %s", label)) +
			dateStyle.Render(fmt.Sprintf("  (%d conversation(s), %d message(s))", summary.Conversations, summary.Messages)))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "  "+titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Msgs")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Via")+"\t")

		for _, conv := range bucket {
			title := conv.Title
			if title == "" {
				title = "Untitled"
			}
			title = truncateDisplay(title, 50)

			shortID := conv.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}

			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t\n",
				idStyle.Render(shortID),
				title,
				countStyle.Render(strconv.Itoa(len(conv.Messages))),
				dateStyle.Render(formatRelativeTime(conv.LastActivity())),
				tagStyle.Render(string(matchedVia[conv.ID])),
			)
		}
		_ = w.Flush()
		fmt.Println()
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d conversation(s) across %d bucket(s)", total, len(groups))))
}

func workspaceNames(catalog *internal.Catalog) map[string]string {
	names := map[string]string{
		internal.UnassignedWorkspace: "unassigned",
	}
	if catalog == nil {
		return names
	}
	for _, ws := range catalog.Workspaces() {
		names[ws.ID] = ws.DisplayName()
	}
	return names
}

func formatRelativeTime(ms int64) string {
	if ms <= 0 {
		return "—"
	}
	t := time.Unix(0, ms*int64(time.Millisecond))
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

// truncateDisplay shortens a string for table display.
func truncateDisplay(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listClearCache, "clear-cache", false, "Clear the cache before running")
}
