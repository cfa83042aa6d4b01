// ABOUTME: ReAct agent that picks pipeline stages as tools until it reaches a final answer
// ABOUTME: A step-selection policy only: all work happens in the shared tools and session
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harper/newsclip/internal/config"
	"github.com/harper/newsclip/internal/core"
	"github.com/harper/newsclip/internal/llm"
	"github.com/harper/newsclip/internal/models"
	"github.com/harper/newsclip/internal/session"
)

// ErrMaxSteps is returned when the agent runs out of steps without a final answer
var ErrMaxSteps = errors.New("agent reached the step limit without a final answer")

const (
	agentTemperature      = 0.5
	defaultMaxSteps       = 8
	defaultMaxObservation = 6000
)

// Step is one Thought / Action / Observation cycle
type Step struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action,omitempty"`
	Input       string `json:"input,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// Result is the outcome of a run
type Result struct {
	Answer string `json:"answer"`
	Steps  []Step `json:"steps"`
}

// Options configures an Agent
type Options struct {
	MaxSteps int
	// MaxObservation bounds each observation fed back to the model, in characters
	MaxObservation int
	// OnStep, when set, is called after each step
	OnStep func(Step)
}

// Agent runs the ReAct loop
type Agent struct {
	llm    core.ChatClient
	tools  *Toolset
	sess   *session.Session
	system string
	opts   Options
}

// New creates an Agent over tools. sess receives the task and answer in its
// history and may be nil.
func New(client core.ChatClient, tools *Toolset, prompts config.Prompts, sess *session.Session, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.MaxObservation <= 0 {
		opts.MaxObservation = defaultMaxObservation
	}
	return &Agent{
		llm:    client,
		tools:  tools,
		sess:   sess,
		system: config.Render(prompts.AgentSystem, map[string]string{"tools": tools.Describe()}),
		opts:   opts,
	}
}

// Run works on task until the model gives a final answer, the step limit is
// reached or ctx is done
func (a *Agent) Run(ctx context.Context, task string) (Result, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Result{}, errors.New("task is empty")
	}
	if a.sess != nil {
		_, _ = a.sess.AddMessage(models.RoleUser, task)
	}

	res, err := a.loop(ctx, task)
	if a.sess != nil {
		if err != nil {
			a.sess.AddError(err)
		} else {
			_, _ = a.sess.AddMessage(models.RoleAssistant, res.Answer)
		}
	}
	return res, err
}

func (a *Agent) loop(ctx context.Context, task string) (Result, error) {
	messages := []llm.Message{llm.System(a.system), llm.User(task)}
	var res Result

	for i := 0; i < a.opts.MaxSteps; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		raw, err := a.llm.Chat(ctx, messages, agentTemperature)
		if err != nil {
			return res, fmt.Errorf("agent step %d: %w", i+1, err)
		}
		out := cleanOutput(raw)
		messages = append(messages, llm.Assistant(out))

		d, err := parseDecision(out)
		if err != nil {
			step := Step{Thought: d.Thought, Observation: formatError(err)}
			res.Steps = append(res.Steps, step)
			a.emit(step)
			messages = append(messages, llm.User(observation(step.Observation)))
			continue
		}
		if d.IsFinal {
			res.Answer = d.Final
			slog.Info("agent finished", slog.Int("steps", len(res.Steps)))
			return res, nil
		}

		step := Step{Thought: d.Thought, Action: d.Action, Input: d.Input}
		obs, final, done := a.act(ctx, d)
		step.Observation = obs
		res.Steps = append(res.Steps, step)
		a.emit(step)
		if done {
			res.Answer = final
			slog.Info("agent finished", slog.Int("steps", len(res.Steps)))
			return res, nil
		}
		messages = append(messages, llm.User(observation(obs)))
	}

	return res, fmt.Errorf("%w (%d steps)", ErrMaxSteps, a.opts.MaxSteps)
}

// act runs the tool chosen in d. Failures become observations so the model
// can recover.
func (a *Agent) act(ctx context.Context, d decision) (obs, final string, done bool) {
	fallback := ""
	if t, ok := a.tools.Get(d.Action); ok && len(t.Params) > 0 {
		fallback = t.Params[0].Name
	}

	args, err := parseArgs(d.Input, fallback)
	if err != nil {
		return formatError(err), "", false
	}

	slog.Debug("agent action", slog.String("tool", d.Action))
	out, err := a.tools.Call(ctx, d.Action, args)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("tool failed", slog.String("tool", d.Action), slog.Any("error", err))
		}
		return formatError(err), "", false
	}
	if d.Action == ToolFinalAnswer {
		return out, out, true
	}
	return core.Truncate(out, a.opts.MaxObservation), "", false
}

func (a *Agent) emit(s Step) {
	if a.opts.OnStep != nil {
		a.opts.OnStep(s)
	}
}

func observation(s string) string {
	return "Observation: " + s
}

func formatError(err error) string {
	return "Erro: " + err.Error()
}
