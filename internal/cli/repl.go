package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/tutorgraph/pkg/chat"
	"github.com/aretw0/tutorgraph/pkg/pipeline"
)

// Renderer turns a Markdown reply into terminal output.
type Renderer func(string) (string, error)

// ChatOptions configures the interactive REPL.
type ChatOptions struct {
	Graph string
	// UserID opens a session for the duration of the REPL when set.
	UserID  string
	Topics  []string
	Persona string
	Quiet   bool
	Render  Renderer
}

// RunChat reads learner messages line by line from in and prints tutor replies to out.
//
// Commands: /code <file> attaches a code file to the following messages,
// /clear detaches it, /graph <name> switches topology, /quit leaves.
func RunChat(ctx context.Context, app *App, in io.Reader, out io.Writer, opts ChatOptions) error {
	graphName := opts.Graph
	if graphName == "" {
		graphName = app.Chat.DefaultGraph()
	}

	var sessionID string
	if opts.UserID != "" {
		sess, err := app.Sessions.Start(ctx, opts.UserID, opts.Topics, opts.Persona)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		sessionID = sess.ID
		defer func() {
			if _, err := app.Sessions.End(context.WithoutCancel(ctx), sessionID); err != nil {
				app.Logger.Warn("Failed to end session", "session_id", sessionID, "err", err)
			}
		}()
		if !opts.Quiet {
			printSystemMessage(out, "Session '%s' active.", sessionID)
		}
	}

	if graphName == pipeline.Tutoring {
		resp, err := app.Chat.Handle(ctx, chat.Request{SessionID: sessionID, Graph: graphName})
		if err != nil {
			return err
		}
		writeReply(out, resp.Response.Text, opts.Render)
	}

	var code string
	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	scanner.Buffer(make([]byte, 0, 64*1024), chat.DefaultMaxCodeSize)
	for {
		if !opts.Quiet {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return handleExecutionError(scanner.Err())
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			if !opts.Quiet {
				printSystemMessage(out, "Bye!")
			}
			return nil
		case line == "/clear":
			code = ""
			printSystemMessage(out, "Code detached.")
			continue
		case strings.HasPrefix(line, "/code "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/code "))
			data, err := os.ReadFile(path)
			if err != nil {
				printSystemMessage(out, "Cannot read %s: %v", path, err)
				continue
			}
			code = string(data)
			printSystemMessage(out, "Attached %s (%d bytes).", path, len(data))
			continue
		case strings.HasPrefix(line, "/graph "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/graph "))
			if _, err := app.Engine.Graphs().Get(name); err != nil {
				printSystemMessage(out, "Unknown graph '%s'. Available: %s", name, strings.Join(app.Engine.Graphs().Names(), ", "))
				continue
			}
			graphName = name
			printSystemMessage(out, "Using graph '%s'.", name)
			continue
		}

		resp, err := app.Chat.Handle(ctx, chat.Request{
			SessionID: sessionID,
			Message:   line,
			Code:      code,
			Graph:     graphName,
		})
		if err != nil {
			if errors.Is(err, chat.ErrInputTooLarge) || errors.Is(err, chat.ErrInvalidUTF8) {
				printSystemMessage(out, "%v", err)
				continue
			}
			return handleExecutionError(err)
		}
		writeReply(out, resp.Response.Text, opts.Render)
	}
}

// AskOptions configures a one-shot question.
type AskOptions struct {
	JSON   bool
	Render Renderer
}

// Ask runs a single exchange and prints the reply.
func Ask(ctx context.Context, app *App, req chat.Request, out io.Writer, opts AskOptions) error {
	resp, err := app.Chat.Handle(ctx, req)
	if err != nil {
		return err
	}
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	}
	writeReply(out, resp.Response.Text, opts.Render)
	return nil
}

func writeReply(out io.Writer, text string, render Renderer) {
	if render != nil {
		if rendered, err := render(text); err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	fmt.Fprintln(out, text)
}
