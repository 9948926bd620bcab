// Command backfill downloads a channel's chat logs from logs.ivr.fi day by
// day into MongoDB, SQLite or JSON files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driving/cli"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Values already in the environment take precedence over .env
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Could not load .env: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	watcher := &interruptWatcher{cancel: cancel, out: os.Stderr, exit: os.Exit}
	go watcher.watch(sigChan)

	cli.SetVersion(version)
	err := cli.Execute(ctx)
	if err != nil {
		logger.Error("%v", err)
	}
	return exitCode(err, watcher.Interrupted())
}

// interruptWatcher cancels the run on the first signal and exits on the second.
type interruptWatcher struct {
	received atomic.Bool
	cancel   context.CancelFunc
	out      io.Writer
	exit     func(int)
}

func (w *interruptWatcher) watch(sigChan <-chan os.Signal) {
	sig := <-sigChan
	w.received.Store(true)
	fmt.Fprintf(w.out, "\nReceived %s, stopping. Press Ctrl+C again to exit immediately.\n", sig)
	w.cancel()

	<-sigChan
	w.exit(cli.ExitInterrupted)
}

// Interrupted reports whether a signal arrived.
func (w *interruptWatcher) Interrupted() bool {
	return w.received.Load()
}

// exitCode maps the command result to a status. A received signal always
// yields ExitInterrupted, even when the last day finished before it landed.
func exitCode(err error, interrupted bool) int {
	if interrupted {
		return cli.ExitInterrupted
	}
	return cli.ExitCode(err)
}
