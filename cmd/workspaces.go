package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/qorvid/cursor-atlas/internal"
	"github.com/spf13/cobra"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Show detected workspaces and attribution counts",
	Long: `Show every workspace found in Cursor's workspaceStorage, its root
paths, and how many conversations were attributed to it, broken down by how
the match was made.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runPipeline(true)
		if err != nil {
			return err
		}

		groups := internal.GroupByWorkspace(result.Conversations, result.Attributions)
		displayWorkspaces(result.Catalog, groups, result.Attributions)
		return nil
	},
}

func displayWorkspaces(catalog *internal.Catalog, groups map[string][]*internal.Conversation, attributions []internal.Attribution) {
	viaCounts := make(map[string]map[internal.MatchedVia]int)
	for _, att := range attributions {
		if viaCounts[att.WorkspaceID] == nil {
			viaCounts[att.WorkspaceID] = make(map[internal.MatchedVia]int)
		}
		viaCounts[att.WorkspaceID][att.MatchedVia]++
	}

	names := workspaceNames(catalog)
	roots := make(map[string][]string)
	for _, ws := range catalog.Workspaces() {
		roots[ws.ID] = ws.RootPaths
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%d workspace(s) detected", catalog.Len())))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("Workspace")+"\t"+titleStyle.Render("Convs")+"\t"+titleStyle.Render("Msgs")+"\t"+titleStyle.Render("Matched via")+"\t"+titleStyle.Render("Roots")+"\t")

	for _, summary := range internal.SummarizeGroups(groups) {
		label := names[summary.WorkspaceID]
		if label == "" {
			label = summary.WorkspaceID
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			workspaceStyle.Render(label),
			countStyle.Render(strconv.Itoa(summary.Conversations)),
			strconv.Itoa(summary.Messages),
			tagStyle.Render(formatViaCounts(viaCounts[summary.WorkspaceID])),
			dateStyle.Render(truncateDisplay(strings.Join(roots[summary.WorkspaceID], ", "), 60)),
		)
	}
	_ = w.Flush()

	// Workspaces with no attributed conversations still get a row.
	empty := 0
	for _, ws := range catalog.Workspaces() {
		if _, ok := groups[ws.ID]; !ok {
			empty++
		}
	}
	if empty > 0 {
		fmt.Println()
		fmt.Println(dateStyle.Render(fmt.Sprintf("%d workspace(s) with no conversations", empty)))
	}
}

func formatViaCounts(counts map[internal.MatchedVia]int) string {
	if len(counts) == 0 {
		return "—"
	}
	order := []internal.MatchedVia{
		internal.MatchDirect,
		internal.MatchDeclaredPath,
		internal.MatchDeclaredBasename,
		internal.MatchReferencedPath,
		internal.MatchSegment,
		internal.MatchNone,
	}
	var parts []string
	for _, via := range order {
		if n := counts[via]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", via, n))
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(workspacesCmd)
}
