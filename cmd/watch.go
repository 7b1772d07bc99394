/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/longkey1/clippyai/internal/clipboard"
	"github.com/longkey1/clippyai/internal/clippy/analysis"
	"github.com/longkey1/clippyai/internal/clippy/config"
	"github.com/longkey1/clippyai/internal/clippy/session"
	"github.com/longkey1/clippyai/internal/render"
	"github.com/spf13/cobra"
)

const previewLines = 8

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the clipboard and offer to explain what you copy",
	Long: `Poll the clipboard and, whenever its text changes, show a preview and ask
whether to explain it. After an explanation you can ask follow-up questions
about the same snippet.

Follow-up commands:
  /help         Show the available commands
  /info         Show the current session
  /save <file>  Save the conversation (.json, .yaml or .md)
  /new          Forget this conversation and go back to watching
  /done         Go back to watching
  /exit         Stop watching`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clipboard.Supported() {
			return fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if model != "" {
			cfg.Model = model
		}

		logger := newLogger(os.Stderr, false)
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		service, cleanup, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()
		watchConfig(service, logger)

		a := &assistant{
			service: service,
			in:      bufio.NewScanner(os.Stdin),
			prompt:  os.Stderr,
			term:    render.NewTerminal(os.Stdout),
			spin:    true,
			quit:    cancel,
		}

		watcher := clipboard.NewWatcher(clipboard.SystemReader{}, cfg.GetPollInterval(), cfg.GetMinClipboardLength(), logger)
		fmt.Fprintf(os.Stderr, "Watching the clipboard with %s (Ctrl+C to stop)\n", cfg.Model)

		err = watcher.Watch(ctx, a.handleClipboard)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// commandResult tells the follow-up loop what to do after a slash command.
type commandResult int

const (
	commandContinue commandResult = iota
	commandDone
	commandExit
)

// assistant drives the interactive side of watch: confirmation, the
// analysis itself and the follow-up conversation.
type assistant struct {
	service   *analysis.Service
	in        *bufio.Scanner
	prompt    io.Writer
	term      *render.Terminal
	spin      bool
	quit      func()
	sessionID string
}

func (a *assistant) handleClipboard(ctx context.Context, text string) {
	fmt.Fprintln(a.prompt)
	a.term.Preview(text, previewLines)

	answer, ok := a.ask("Explain with ClippyAI? [y/N] ")
	if !ok {
		a.quit()
		return
	}
	if !isYes(answer) {
		return
	}

	extra, ok := a.ask("Additional context (Enter to skip): ")
	if !ok {
		a.quit()
		return
	}

	var result analysis.Result
	a.wait(func() {
		result = a.service.Analyze(ctx, analysis.Request{Text: text, AdditionalContext: extra})
	})
	a.term.Analysis(string(result.Mode), result.Explanation, result.Fixes, result.Failed)
	if result.Failed || result.SessionID == "" {
		return
	}

	a.sessionID = result.SessionID
	a.converse(ctx)
}

// converse runs the follow-up loop until /done, /new, /exit or EOF.
func (a *assistant) converse(ctx context.Context) {
	fmt.Fprintf(a.prompt, "Ask a follow-up question, or type '/help' for commands\n")

	for {
		input, ok := a.ask("You> ")
		if !ok {
			fmt.Fprintln(a.prompt, "\nGoodbye!")
			a.quit()
			return
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			switch a.handleSpecialCommand(input) {
			case commandContinue:
				continue
			case commandDone:
				return
			case commandExit:
				a.quit()
				return
			}
		}

		var result analysis.Result
		a.wait(func() {
			result = a.service.Chat(ctx, a.sessionID, input)
		})
		a.term.Chat(result.ChatResponse)
	}
}

// ask prints question and reads one trimmed line. ok is false on EOF.
func (a *assistant) ask(question string) (string, bool) {
	fmt.Fprint(a.prompt, question)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// wait runs fn, showing a spinner while it blocks.
func (a *assistant) wait(fn func()) {
	if !a.spin {
		fn()
		return
	}
	done := make(chan bool)
	stopped := make(chan struct{})
	go func() {
		showSpinner(a.prompt, done)
		close(stopped)
	}()
	fn()
	done <- true
	<-stopped
}

// handleSpecialCommand processes slash commands in the follow-up loop
func (a *assistant) handleSpecialCommand(input string) commandResult {
	fields := strings.Fields(input)
	command := strings.ToLower(fields[0])

	switch command {
	case "/help", "/h":
		fmt.Fprintln(a.prompt, "\nAvailable commands:")
		fmt.Fprintln(a.prompt, "  /help, /h         - Show this help message")
		fmt.Fprintln(a.prompt, "  /info, /i         - Show session information")
		fmt.Fprintln(a.prompt, "  /save <file>      - Save the conversation (.json, .yaml or .md)")
		fmt.Fprintln(a.prompt, "  /new              - Forget this conversation and keep watching")
		fmt.Fprintln(a.prompt, "  /done             - Keep watching the clipboard")
		fmt.Fprintln(a.prompt, "  /exit, /quit      - Stop watching")
		fmt.Fprintln(a.prompt, "  Ctrl+D            - Stop watching")
		fmt.Fprintln(a.prompt, "")
		return commandContinue

	case "/info", "/i":
		sess, ok := a.service.Store().Get(a.sessionID)
		if !ok {
			fmt.Fprintln(a.prompt, analysis.NoSessionMessage)
			return commandContinue
		}
		fmt.Fprintln(a.prompt, "\nSession Information:")
		fmt.Fprintf(a.prompt, "  ID: %s\n", sess.ID)
		fmt.Fprintf(a.prompt, "  Messages: %d\n", sess.MessageCount())
		fmt.Fprintf(a.prompt, "  Created: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(a.prompt, "")
		return commandContinue

	case "/save", "/s":
		if len(fields) < 2 {
			fmt.Fprintln(a.prompt, "Usage: /save <file>")
			return commandContinue
		}
		if err := a.save(fields[1]); err != nil {
			fmt.Fprintf(a.prompt, "Error: %v\n", err)
			return commandContinue
		}
		fmt.Fprintf(a.prompt, "Saved conversation to %s\n", fields[1])
		return commandContinue

	case "/new", "/n":
		a.service.Store().ClearCurrentSession()
		a.sessionID = ""
		fmt.Fprintln(a.prompt, "Conversation cleared. Watching the clipboard...")
		return commandDone

	case "/done", "/d":
		fmt.Fprintln(a.prompt, "Watching the clipboard...")
		return commandDone

	case "/exit", "/quit", "/q":
		fmt.Fprintln(a.prompt, "Goodbye!")
		return commandExit

	default:
		fmt.Fprintf(a.prompt, "Unknown command: %s (type '/help' for available commands)\n", command)
		return commandContinue
	}
}

// save writes the current session to path, picking the format from its
// extension.
func (a *assistant) save(path string) error {
	sess, ok := a.service.Store().Get(a.sessionID)
	if !ok {
		return errors.New(analysis.NoSessionMessage)
	}

	exporter, err := session.NewExporter(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := exporter.Export(sess, f); err != nil {
		return fmt.Errorf("exporting session: %w", err)
	}
	return f.Close()
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// showSpinner displays a spinner animation while waiting for response
func showSpinner(w io.Writer, done chan bool) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			// Clear the spinner line
			fmt.Fprint(w, "\r\033[K")
			return
		default:
			fmt.Fprintf(w, "\r%s Waiting for response...", spinners[i])
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (format: provider:model, e.g., gemini:gemini-2.0-flash)")
}
