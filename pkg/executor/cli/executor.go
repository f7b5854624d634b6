// Package cli provides a plain command-line executor for the recall
// assistant.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/entrhq/recall/pkg/assistant"
//	    "github.com/entrhq/recall/pkg/cache"
//	    "github.com/entrhq/recall/pkg/config"
//	    "github.com/entrhq/recall/pkg/executor/cli"
//	    "github.com/entrhq/recall/pkg/llm/ollama"
//	)
//
//	func main() {
//	    provider, _ := ollama.NewProvider(ollama.WithModel("llama3"))
//	    store, _ := cache.New("/tmp/recall", "qa_cache.json", cache.PolicyExact)
//	    a := assistant.New(store, provider, config.NewAssistantSection())
//
//	    executor := cli.NewExecutor(a, cli.WithShowSource(true))
//	    if err := executor.Run(context.Background()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/entrhq/recall/pkg/assistant"
	"github.com/entrhq/recall/pkg/cache"
)

// Executor is a CLI-based executor that enables turn-by-turn conversation
// with the assistant through terminal input/output.
type Executor struct {
	assistant *assistant.Assistant
	reader    *bufio.Reader
	writer    io.Writer

	// Display options
	showSource bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowSource enables/disables marking answers that came from the cache.
func WithShowSource(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showSource = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// NewExecutor creates a new CLI executor for the given assistant.
func NewExecutor(a *assistant.Assistant, opts ...ExecutorOption) *Executor {
	e := &Executor{
		assistant:  a,
		reader:     bufio.NewReader(os.Stdin),
		writer:     os.Stdout,
		showSource: true, // Mark cache hits by default
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run starts the executor and begins the conversation loop.
// Returns when the user exits or an error occurs.
func (e *Executor) Run(ctx context.Context) error {
	// Print welcome message
	fmt.Fprintln(e.writer, "Recall Assistant")
	fmt.Fprintln(e.writer, "Type your question and press Enter. Type 'exit' or 'quit' to end the conversation.")
	fmt.Fprintln(e.writer, "Type '/help' for commands.")
	fmt.Fprintln(e.writer)

	// Main conversation loop
	for {
		// Check if context is canceled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Read user input
		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(e.writer)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)

		// Handle exit commands
		if input == "exit" || input == "quit" {
			return nil
		}

		// Skip empty input
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			e.handleCommand(input)
			continue
		}

		e.handleQuestion(ctx, input)
	}
}

// handleQuestion asks the assistant and renders the answer.
func (e *Executor) handleQuestion(ctx context.Context, question string) {
	ans := e.assistant.Answer(ctx, question)
	if e.showSource && ans.Cached {
		fmt.Fprintln(e.writer, "Assistant (cached):")
	} else {
		fmt.Fprintln(e.writer, "Assistant:")
	}
	fmt.Fprintln(e.writer, ans.Text)
	fmt.Fprintln(e.writer)
}

// handleCommand dispatches a slash command.
func (e *Executor) handleCommand(input string) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/help":
		e.printHelp()
	case "/policy":
		e.handlePolicy(fields[1:])
	case "/stats":
		e.printStats()
	default:
		fmt.Fprintf(e.writer, "Unknown command %s. Type '/help' for commands.\n", fields[0])
	}
}

func (e *Executor) handlePolicy(args []string) {
	c := e.assistant.Cache()
	if len(args) == 0 {
		fmt.Fprintf(e.writer, "Matching policy: %s\n", c.ActivePolicy())
		return
	}
	policy, err := cache.ParsePolicy(args[0])
	if err != nil {
		fmt.Fprintf(e.writer, "Error: %v\n", err)
		return
	}
	if err := c.SwitchPolicy(policy); err != nil {
		fmt.Fprintf(e.writer, "Error: policy unchanged: %v\n", err)
		return
	}
	fmt.Fprintf(e.writer, "Matching policy: %s\n", c.ActivePolicy())
}

func (e *Executor) printStats() {
	c := e.assistant.Cache()
	fmt.Fprintf(e.writer, "Policy:  %s\n", c.ActivePolicy())
	fmt.Fprintf(e.writer, "Answers: %d\n", c.Len())
	fmt.Fprintf(e.writer, "Store:   %s\n", c.StorePath())
}

func (e *Executor) printHelp() {
	fmt.Fprintln(e.writer, "Commands:")
	fmt.Fprintln(e.writer, "  /policy [exact|ignored]  show or switch the question matching policy")
	fmt.Fprintln(e.writer, "  /stats                   show cache statistics")
	fmt.Fprintln(e.writer, "  /help                    show this help")
	fmt.Fprintln(e.writer, "  exit, quit               end the conversation")
}
