// ABOUTME: CLI command that lets the ReAct agent choose pipeline stages for a task
// ABOUTME: Streams each thought, action and observation as the agent works
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/agent"
)

const observationPreview = 300

var (
	agentMaxSteps int
)

// NewAgentCmd creates the agent command
func NewAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent <task>",
		Short: "Let the agent decide which steps to run",
		Long: `Give the agent a task in plain language.

The agent reasons step by step and calls the same tools the pipeline
uses: transcription, summary, indexing, web search, highlights and
questions about the transcript. It stops at a final answer or when it
runs out of steps.`,
		Example: `  newsclip agent "Transcreva https://youtu.be/dQw4w9WgXcQ e encontre os destaques"
  newsclip agent --max-steps 12 "Resuma o vídeo https://youtu.be/dQw4w9WgXcQ e busque notícias sobre o tema"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAgent,
	}

	cmd.Flags().IntVar(&agentMaxSteps, "max-steps", 0, "Maximum reasoning steps (default from AGENT_MAX_STEPS)")

	return cmd
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	maxSteps := a.cfg.AgentMaxSteps
	if agentMaxSteps != 0 {
		if err := validatePositiveInt(agentMaxSteps, "max-steps"); err != nil {
			return err
		}
		maxSteps = agentMaxSteps
	}

	opts := agent.Options{MaxSteps: maxSteps}
	if !quiet {
		opts.OnStep = func(s agent.Step) {
			printAgentStep(cmd.ErrOrStderr(), s)
		}
	}
	ag := agent.New(a.client, agent.StageTools(a.stages, a.sess), a.prompts, a.sess, opts)

	res, err := ag.Run(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Answer)
	return nil
}

// printAgentStep renders one agent step with the REPL's step labels
func printAgentStep(w io.Writer, s agent.Step) {
	if s.Thought != "" {
		fmt.Fprintf(w, "💭 %s\n", oneLine(s.Thought))
	}
	if s.Action != "" {
		fmt.Fprintf(w, "⚙️  %s(%s)\n", s.Action, truncate(oneLine(s.Input), 120))
	}
	if s.Observation != "" {
		fmt.Fprintf(w, "👁️  %s\n", truncate(oneLine(s.Observation), observationPreview))
	}
}
