// Package console runs the bot as a local read-eval-print loop for a single
// user, useful for trying commands without a Telegram token.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/hydrotrack-bot/server/internal/tracker/router"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

const prompt = "hydro> "

type Console struct {
	in     io.Reader
	out    io.Writer
	userID int64
	runner router.Runner
}

func New(in io.Reader, out io.Writer, cfg model.ConsoleConfig, runner router.Runner) *Console {
	return &Console{in: in, out: out, userID: cfg.UserID, runner: runner}
}

// Run reads lines until EOF, "exit"/"quit", or ctx cancellation. If the
// input is an io.Closer it is closed on return so the reader goroutine
// unblocks; a terminal stdin may still hold it in Read until process exit.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if closer, ok := c.in.(io.Closer); ok {
		defer closer.Close()
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	logx.Info().Int64("user_id", c.userID).Msg("console session started")
	fmt.Fprint(c.out, prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read console input: %w", err)
					}
				default:
				}
				return nil
			}
			text := strings.TrimSpace(line)
			switch text {
			case "":
			case "exit", "quit":
				fmt.Fprintln(c.out, "Bye!")
				return nil
			default:
				reply := c.runner.HandleMessage(ctx, model.InboundMessage{UserID: c.userID, Text: text})
				fmt.Fprintln(c.out, reply)
			}
			fmt.Fprint(c.out, prompt)
		}
	}
}
