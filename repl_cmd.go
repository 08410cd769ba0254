package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/jtalk/tts"
)

const (
	replRepeat = ":r"
	replQuit   = ":q"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Speak one line at a time",
	Long: paragraph(fmt.Sprintf("\n%s every line read from standard input. %s repeats the last line, %s or Ctrl-D quits and Ctrl-C stops the voice.",
		keyword("Speak"), keyword(replRepeat), keyword(replQuit))),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		orch, err := newSession(opts)
		if err != nil {
			return err
		}
		defer func() { _ = orch.Close() }()

		release := stopOnInterrupt(orch, nil)
		defer release()

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		return runREPL(cmd.Context(), orch, os.Stdin, os.Stdout, opts.Pitch, interactive)
	},
}

// speaker is the part of the orchestrator the REPL drives.
type speaker interface {
	Talk(ctx context.Context, text string, pitchPeriod int) error
	Repeat(ctx context.Context) error
}

// runREPL reads lines from in until EOF or the quit command. Recoverable
// errors are reported and the loop continues.
func runREPL(ctx context.Context, s speaker, in io.Reader, out io.Writer, pitchPeriod int, prompt bool) error {
	sc := bufio.NewScanner(in)
	for {
		if prompt {
			_, _ = fmt.Fprint(out, keyword("> "))
		}
		if !sc.Scan() {
			return sc.Err()
		}

		line := strings.TrimSpace(sc.Text())
		var err error
		switch line {
		case "":
			continue
		case replQuit:
			return nil
		case replRepeat:
			err = s.Repeat(ctx)
		default:
			err = s.Talk(ctx, line, pitchPeriod)
		}

		if err != nil {
			if !tts.IsRecoverable(err) {
				return err
			}
			_, _ = fmt.Fprintln(out, missingStyle.Render(err.Error()))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
