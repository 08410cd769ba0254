package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/jtalk/tts"
	"github.com/dgnsrekt/jtalk/tts/frontend"
	"github.com/dgnsrekt/jtalk/tts/sentence"
)

var sayCmd = &cobra.Command{
	Use:     "say [TEXT...]",
	Short:   "Speak text",
	Long:    paragraph(fmt.Sprintf("\n%s the arguments, or standard input when there are none, one sentence at a time. Ctrl-C stops the voice.", keyword("Speak"))),
	Example: paragraph("jtalk say 今日は良い天気です。\necho こんにちは | jtalk say --pitch 200"),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := sayText(args, os.Stdin)
		if err != nil {
			return err
		}

		opts, err := loadOptions()
		if err != nil {
			return err
		}
		orch, err := newSession(opts)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Close() }()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		release := stopOnInterrupt(orch, cancel)
		defer release()

		return speakAll(ctx, orch, sentence.NewParser(frontend.MaxInputBytes).Parse(text), opts.Pitch)
	},
}

// speakAll speaks sentences in order. An interrupt ends the run without an
// error.
func speakAll(ctx context.Context, s speaker, sentences []string, pitchPeriod int) error {
	for _, text := range sentences {
		if err := s.Talk(ctx, text, pitchPeriod); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// sayText joins args or, without args, reads a non-interactive stdin.
func sayText(args []string, stdin *os.File) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if term.IsTerminal(int(stdin.Fd())) {
		return "", errors.New("nothing to say: pass text as arguments or pipe it in")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("unable to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// stopOnInterrupt stops the current playback and calls onInterrupt, if set,
// on every SIGINT until the returned function is called.
func stopOnInterrupt(orch *tts.Orchestrator, onInterrupt func()) func() {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, os.Interrupt)

	go func() {
		for {
			select {
			case <-sig:
				if onInterrupt != nil {
					onInterrupt()
				}
				if err := orch.Stop(); err != nil {
					log.Debug("Stop failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sig)
		close(done)
	}
}
