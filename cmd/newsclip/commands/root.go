// ABOUTME: Root command, global flags and logging setup for the newsclip CLI
// ABOUTME: Registers every subcommand
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ██╗███████╗██╗    ██╗███████╗ ██████╗██╗     ██╗██████╗
████╗  ██║██╔════╝██║    ██║██╔════╝██╔════╝██║     ██║██╔══██╗
██╔██╗ ██║█████╗  ██║ █╗ ██║███████╗██║     ██║     ██║██████╔╝
██║╚██╗██║██╔══╝  ██║███╗██║╚════██║██║     ██║     ██║██╔═══╝
██║ ╚████║███████╗╚███╔███╔╝███████║╚██████╗███████╗██║██║
╚═╝  ╚═══╝╚══════╝ ╚══╝╚══╝ ╚══════╝ ╚═════╝╚══════╝╚═╝╚═╝
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsclip",
		Short: "Journalism assistant for YouTube videos",
		Long: banner + `
Transcribe a YouTube video, summarize it, index it for questions and
find newsworthy excerpts cross-referenced against current web news.

Run the whole pipeline with "analyze", talk to it with "chat", let an
agent pick the steps with "agent", or expose everything to other tools
with "mcp" (stdio) and "serve" (HTTP).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewChatCmd(),
		NewAgentCmd(),
		NewSearchCmd(),
		NewModelsCmd(),
		NewMCPCmd(),
		NewServeCmd(),
		NewHistoryCmd(),
		NewEvalCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
