// ABOUTME: Interactive chat REPL over one session
// ABOUTME: URLs run the pipeline, questions go to the transcript index, /agent hands a task to the agent
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/newsclip/internal/agent"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/session"
	"github.com/harper/newsclip/internal/storage"
)

const chatHelp = `Comandos:
  <url do YouTube>     analisa o vídeo (transcrição, resumo, índice, destaques)
  <pergunta>           responde com base na transcrição indexada
  /agent <tarefa>      deixa o agente escolher as etapas
  /transcript          mostra a transcrição
  /summary             mostra o resumo
  /highlights          mostra os destaques
  /session             estado da sessão
  /export <dir>        grava os arquivos do vídeo em <dir>
  /reset               limpa a sessão
  /help                esta ajuda
  /quit                sair
`

type videoAnalyzer interface {
	Run(ctx context.Context, sess *session.Session, url string) (*models.Analysis, error)
}

type questionAnswerer interface {
	Ask(ctx context.Context, idx *storage.VectorIndex, question string) (models.Answer, error)
}

type taskRunner interface {
	Run(ctx context.Context, task string) (agent.Result, error)
}

// repl reads one command per line until EOF or /quit
type repl struct {
	sess     *session.Session
	analyzer videoAnalyzer
	asker    questionAnswerer
	agent    taskRunner
	in       io.Reader
	out      io.Writer
}

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: analyze a video and ask about it",
		Long: `Start an interactive session.

Paste a YouTube URL to run the full pipeline, then ask questions about
the video. Answers come only from the indexed transcript. Type /help
for the list of commands.`,
		Example: `  newsclip chat
  > https://youtu.be/dQw4w9WgXcQ
  > Quais números o entrevistado citou?
  > /export ./pauta`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	pipeline := a.pipeline()
	pipeline.OnStep = func(s models.Step) { printStep(out, s) }

	r := &repl{
		sess:     a.sess,
		analyzer: pipeline,
		asker:    a.stages.Querier,
		agent: agent.New(a.client, agent.StageTools(a.stages, a.sess), a.prompts, a.sess, agent.Options{
			MaxSteps: a.cfg.AgentMaxSteps,
			OnStep:   func(s agent.Step) { printAgentStep(out, s) },
		}),
		in:  cmd.InOrStdin(),
		out: out,
	}

	if !quiet {
		fmt.Fprintf(out, "newsclip %s (%s). /help para ajuda.\n", versionInfo.Version, a.client.ChatModel())
	}
	return r.run(ctx)
}

func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := r.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle runs one line and reports whether the REPL should exit
func (r *repl) handle(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprint(r.out, chatHelp)
	case "/agent":
		r.runAgent(ctx, rest)
	case "/transcript":
		r.printArtifact("transcript")
	case "/summary":
		r.printArtifact("summary")
	case "/highlights":
		r.printArtifact("highlights")
	case "/session":
		r.printSession()
	case "/export":
		r.export(rest)
	case "/reset":
		r.sess.Reset()
		fmt.Fprintln(r.out, "Sessão limpa.")
	default:
		if strings.HasPrefix(cmd, "/") {
			r.fail(fmt.Errorf("comando desconhecido %s (use /help)", cmd))
			return false
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			r.analyze(ctx, line)
			return false
		}
		r.ask(ctx, line)
	}
	return false
}

func (r *repl) analyze(ctx context.Context, url string) {
	a, err := r.analyzer.Run(ctx, r.sess, url)
	if err != nil {
		r.fail(err)
		return
	}
	printAnalysis(r.out, a)
}

func (r *repl) ask(ctx context.Context, question string) {
	_, _ = r.sess.AddMessage(models.RoleUser, question)
	answer, err := r.asker.Ask(ctx, r.sess.Index(), question)
	if err != nil {
		r.sess.AddError(err)
		r.fail(err)
		return
	}
	_, _ = r.sess.AddMessage(models.RoleAssistant, answer.Render())
	fmt.Fprintf(r.out, "%s\n", answer.Render())
}

func (r *repl) runAgent(ctx context.Context, task string) {
	if task == "" {
		r.fail(fmt.Errorf("uso: /agent <tarefa>"))
		return
	}
	res, err := r.agent.Run(ctx, task)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "%s\n", res.Answer)
}

func (r *repl) printArtifact(kind string) {
	_, content, ok := r.sess.Artifact(kind)
	if !ok {
		r.fail(session.ErrNoTranscript)
		return
	}
	fmt.Fprintf(r.out, "%s\n", content)
}

func (r *repl) printSession() {
	snap := r.sess.Snapshot()
	status := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "-"
	}
	title := "(nenhum vídeo)"
	if snap.Transcript != nil {
		title = snap.Transcript.Title
	}
	fmt.Fprintf(r.out, "Vídeo:       %s\n", title)
	fmt.Fprintf(r.out, "Transcrição: %s\n", status(snap.Transcript != nil))
	fmt.Fprintf(r.out, "Resumo:      %s\n", status(snap.Summary != nil))
	fmt.Fprintf(r.out, "Índice:      %s (%d trechos)\n", status(snap.Indexed), snap.Chunks)
	fmt.Fprintf(r.out, "Destaques:   %s\n", status(snap.Highlights != nil))
	fmt.Fprintf(r.out, "Mensagens:   %d\n", len(snap.History))
}

func (r *repl) export(dir string) {
	if dir == "" {
		dir = "."
	}
	paths, err := r.sess.Export(dir)
	if err != nil {
		r.fail(err)
		return
	}
	for _, p := range paths {
		fmt.Fprintf(r.out, "📄 %s\n", p)
	}
}

func (r *repl) fail(err error) {
	fmt.Fprintf(r.out, "❌ %v\n", err)
}
