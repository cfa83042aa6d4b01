// ABOUTME: Tool declarations over the pipeline stages, shared by the agent loop and the MCP server
// ABOUTME: Each tool reads and writes the same session the pipeline commits to
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/session"
)

// Tool names
const (
	ToolTranscribe  = "transcribe_youtube_video"
	ToolSummarize   = "summarize_transcript"
	ToolIndex       = "index_transcript"
	ToolSearch      = "search_web"
	ToolHighlights  = "find_journalistic_highlights"
	ToolQuery       = "query_transcript"
	ToolFinalAnswer = "final_answer"
)

// Param describes one string argument of a tool
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Tool is a named operation with a JSON input schema
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Run         func(ctx context.Context, args map[string]string) (string, error)
}

// Schema returns the JSON schema properties and required list of the tool input
func (t Tool) Schema() (map[string]any, []string) {
	props := make(map[string]any, len(t.Params))
	var required []string
	for _, p := range t.Params {
		props[p.Name] = map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return props, required
}

// Signature renders the tool for the agent prompt
func (t Tool) Signature() string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		n := p.Name
		if !p.Required {
			n += "?"
		}
		names[i] = n
	}
	return fmt.Sprintf("- %s(%s): %s", t.Name, strings.Join(names, ", "), t.Description)
}

// Validate checks that every required argument is present and not blank
func (t Tool) Validate(args map[string]string) error {
	for _, p := range t.Params {
		if p.Required && strings.TrimSpace(args[p.Name]) == "" {
			return fmt.Errorf("%s: argument %q is required", t.Name, p.Name)
		}
	}
	return nil
}

// Toolset is an ordered set of tools
type Toolset struct {
	tools []Tool
	index map[string]int
}

// NewToolset creates a Toolset from tools, in order
func NewToolset(tools ...Tool) *Toolset {
	ts := &Toolset{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		ts.index[t.Name] = len(ts.tools)
		ts.tools = append(ts.tools, t)
	}
	return ts
}

// Get returns the named tool
func (ts *Toolset) Get(name string) (Tool, bool) {
	i, ok := ts.index[name]
	if !ok {
		return Tool{}, false
	}
	return ts.tools[i], true
}

// Tools returns the tools in declaration order
func (ts *Toolset) Tools() []Tool {
	return append([]Tool(nil), ts.tools...)
}

// Names returns the sorted tool names
func (ts *Toolset) Names() []string {
	names := make([]string, 0, len(ts.tools))
	for _, t := range ts.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Describe renders every tool signature, one per line
func (ts *Toolset) Describe() string {
	lines := make([]string, len(ts.tools))
	for i, t := range ts.tools {
		lines[i] = t.Signature()
	}
	return strings.Join(lines, "\n")
}

// Call validates args and runs the named tool
func (ts *Toolset) Call(ctx context.Context, name string, args map[string]string) (string, error) {
	t, ok := ts.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownTool, name, strings.Join(ts.Names(), ", "))
	}
	if err := t.Validate(args); err != nil {
		return "", err
	}
	return t.Run(ctx, args)
}

// ErrUnknownTool is returned when a tool name is not in the set
var ErrUnknownTool = errors.New("unknown tool")

// StageTools returns the journalism tools over stages, bound to sess
func StageTools(st *core.Stages, sess *session.Session) *Toolset {
	return NewToolset(
		Tool{
			Name:        ToolTranscribe,
			Description: "Transcreve o áudio de um vídeo do YouTube e guarda a transcrição na sessão.",
			Params:      []Param{{Name: "url", Description: "URL do vídeo do YouTube", Required: true}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				tr, err := st.Transcriber.Transcribe(ctx, strings.TrimSpace(args["url"]))
				if err != nil {
					return "", err
				}
				sess.SetTranscript(tr)
				return tr.Render(), nil
			},
		},
		Tool{
			Name:        ToolSummarize,
			Description: "Gera um resumo estruturado (~500 palavras) da transcrição. Sem argumento, usa a transcrição da sessão.",
			Params:      []Param{{Name: "transcript", Description: "Texto a resumir (opcional)"}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				text, err := transcriptArg(sess, args["transcript"])
				if err != nil {
					return "", err
				}
				sum, err := st.Summarizer.SummarizeStructured(ctx, text)
				if err != nil {
					return "", err
				}
				sess.SetSummary(sum)
				return "Resumo do vídeo:\n\n" + sum.Text, nil
			},
		},
		Tool{
			Name:        ToolIndex,
			Description: "Indexa a transcrição para perguntas posteriores. Sem argumento, usa a transcrição da sessão.",
			Params:      []Param{{Name: "transcript", Description: "Texto a indexar (opcional)"}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				text, err := transcriptArg(sess, args["transcript"])
				if err != nil {
					return "", err
				}
				idx, err := st.Indexer.Index(ctx, text)
				if err != nil {
					return "", err
				}
				sess.SetIndex(idx)
				return fmt.Sprintf("Transcrição indexada com sucesso em %d trechos.", idx.Len()), nil
			},
		},
		Tool{
			Name:        ToolSearch,
			Description: "Busca informações na web.",
			Params:      []Param{{Name: "query", Description: "Termos da busca", Required: true}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				res, err := st.Search.Search(ctx, args["query"], 0)
				if err != nil {
					return "", err
				}
				return res.Format(), nil
			},
		},
		Tool{
			Name:        ToolHighlights,
			Description: "Identifica de 3 a 5 pontos de interesse jornalístico no vídeo, cruzados com notícias atuais. Sem argumentos, usa o resumo ou a transcrição da sessão e faz a busca automaticamente.",
			Params: []Param{
				{Name: "context", Description: "Transcrição ou resumo a analisar (opcional)"},
				{Name: "search_results", Description: "Resultados de busca já obtidos (opcional)"},
			},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				text := strings.TrimSpace(args["context"])
				if text == "" {
					var err error
					if text, err = sess.Context(); err != nil {
						return "", err
					}
				}

				var kw, query string
				searchContext := strings.TrimSpace(args["search_results"])
				if searchContext == "" {
					var err error
					if kw, err = st.Highlighter.Keywords(ctx, text); err != nil {
						return "", err
					}
					query = st.Highlighter.NewsQuery(kw)
					res, err := st.Search.Search(ctx, query, st.SearchResults)
					if err != nil {
						return "", err
					}
					searchContext = res.Format()
				}

				h, err := st.Highlighter.Highlight(ctx, text, searchContext)
				if err != nil {
					return "", err
				}
				h.Keywords, h.SearchQuery = kw, query
				sess.SetHighlights(h)
				return h.Text, nil
			},
		},
		Tool{
			Name:        ToolQuery,
			Description: "Responde a uma pergunta sobre o conteúdo do vídeo usando a transcrição indexada.",
			Params:      []Param{{Name: "question", Description: "Pergunta sobre o vídeo", Required: true}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				ans, err := st.Querier.Ask(ctx, sess.Index(), args["question"])
				if err != nil {
					return "", err
				}
				return ans.Render(), nil
			},
		},
		Tool{
			Name:        ToolFinalAnswer,
			Description: "Entrega a resposta final ao jornalista e encerra a tarefa.",
			Params:      []Param{{Name: "answer", Description: "Resposta final", Required: true}},
			Run: func(ctx context.Context, args map[string]string) (string, error) {
				return args["answer"], nil
			},
		},
	)
}

func transcriptArg(sess *session.Session, arg string) (string, error) {
	if strings.TrimSpace(arg) != "" {
		return arg, nil
	}
	tr, ok := sess.Transcript()
	if !ok {
		return "", session.ErrNoTranscript
	}
	return tr.Text, nil
}
