package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/qorvid/cursor-atlas/internal"
	"github.com/qorvid/cursor-atlas/internal/export"
	"github.com/spf13/cobra"
)

var showFormat string

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var showCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Show a single conversation",
	Long: `Show the full timeline of one conversation. The id may be a unique
prefix of the full conversation id. Use --format to emit a machine-readable
rendering instead of the terminal view.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runPipeline(true)
		if err != nil {
			return err
		}

		conv, err := findConversation(result.Conversations, args[0])
		if err != nil {
			return err
		}

		if showFormat != "" {
			exporter, err := export.NewExporter(showFormat)
			if err != nil {
				return err
			}
			return exporter.Export(conv, os.Stdout)
		}

		displayConversation(conv, result.Attributions)
		return nil
	},
}

// findConversation matches a full id or a unique prefix.
func findConversation(conversations []*internal.Conversation, query string) (*internal.Conversation, error) {
	var matches []*internal.Conversation
	for _, conv := range conversations {
		if conv.ID == query {
			return conv, nil
		}
		if strings.HasPrefix(conv.ID, query) {
			matches = append(matches, conv)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("no conversation matches %q", query)
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, fmt.Errorf("id %q is ambiguous, matches: %s", query, strings.Join(ids, ", "))
	}
}

func displayConversation(conv *internal.Conversation, attributions []internal.Attribution) {
	title := conv.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Println(headerStyle.Render(title))
	fmt.Println(metaStyle.Render(fmt.Sprintf("ID: %s", conv.ID)))

	for _, att := range attributions {
		if att.ConversationID == conv.ID {
			fmt.Println(metaStyle.Render(fmt.Sprintf("Workspace: %s (via %s)", att.WorkspaceID, att.MatchedVia)))
			break
		}
	}
	if conv.Metrics != nil {
		m := conv.Metrics
		fmt.Println(metaStyle.Render(fmt.Sprintf(
			"Tokens: %d in / %d out / %d cached  Cost: $%.4f  Tools: %d",
			m.InputTokens, m.OutputTokens, m.CachedTokens, m.TotalCost, m.ToolCalls)))
		if len(m.Models) > 0 {
			fmt.Println(metaStyle.Render("Models: " + strings.Join(m.Models, ", ")))
		}
	}
	fmt.Println()

	for _, msg := range conv.Messages {
		label := userStyle.Render("◆ User")
		if msg.Role == internal.RoleAssistant {
			label = assistantStyle.Render("◇ Assistant")
			if msg.Model != "" {
				label += metaStyle.Render(" [" + msg.Model + "]")
			}
		}
		if ts := msg.Time(); !ts.IsZero() {
			label += metaStyle.Render("  " + ts.Format("2006-01-02 15:04:05"))
		}
		if msg.ResponseTimeMs > 0 {
			label += metaStyle.Render(fmt.Sprintf("  (+%.1fs)", float64(msg.ResponseTimeMs)/1000))
		}
		fmt.Println(label)

		if msg.Thinking != "" {
			for _, line := range strings.Split(strings.TrimRight(msg.Thinking, "\n"), "\n") {
				fmt.Println(thinkingStyle.Render("  ░ " + line))
			}
		}
		for _, line := range strings.Split(strings.TrimRight(msg.Content, "\n"), "\n") {
			fmt.Println("  " + line)
		}
		fmt.Println()
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showFormat, "format", "", "Output format instead of terminal view (md, json, jsonl, yaml)")
}
