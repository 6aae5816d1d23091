// Package glosscmder
package glosscmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/glosshq/gloss/cmd/gloss/ask"
	authcmder "github.com/glosshq/gloss/cmd/gloss/auth"
	chatcmder "github.com/glosshq/gloss/cmd/gloss/chat"
	configcmder "github.com/glosshq/gloss/cmd/gloss/config"
	feedbackcmder "github.com/glosshq/gloss/cmd/gloss/feedback"
	historycmder "github.com/glosshq/gloss/cmd/gloss/history"
	researchcmder "github.com/glosshq/gloss/cmd/gloss/research"
	servecmder "github.com/glosshq/gloss/cmd/gloss/serve"
	statuscmder "github.com/glosshq/gloss/cmd/gloss/status"
	tuicmder "github.com/glosshq/gloss/cmd/gloss/tui"
	versioncmder "github.com/glosshq/gloss/cmd/version"
)

const glossLongDesc string = `Gloss is a terminal client for article question-answering backends.

Ask questions:
  gloss ask "..."         One-shot answer with sources
  gloss research "..."    Streamed research answer with outline and status
  gloss chat              Interactive conversation
  gloss tui               Full-screen terminal interface

Manage conversations:
  gloss history           Show saved conversation tracks
  gloss feedback          Vote on the last answer

Run services:
  gloss serve backend     Run the development backend
  gloss serve mcp         Run the MCP agent server`

const glossShortDesc string = "Gloss - article Q&A from the terminal"

func NewGlossCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gloss",
		Short: glossShortDesc,
		Long:  glossLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(researchcmder.NewResearchCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(feedbackcmder.NewFeedbackCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
