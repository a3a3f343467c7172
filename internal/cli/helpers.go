package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/pkg/config"
)

// errInterrupted is returned by InterruptibleReader once its cancel channel closes.
var errInterrupted = errors.New("interrupted")

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from the log settings.
func NewLogger(s config.LogSettings) *slog.Logger {
	return logging.New(logging.Options{Level: s.Level, JSON: s.Format == "json"})
}

// printSystemMessage prints a standardized system message to w.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a cancellation signal.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}

	// Blocks until the underlying reader returns.
	n, err = r.base.Read(p)

	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
