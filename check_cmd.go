package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/jtalk/internal/subprocess"
	"github.com/dgnsrekt/jtalk/tts/voice"
)

var errCheckFailed = errors.New("voice check failed")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the voice, dictionary and external commands",
	Long:  paragraph(fmt.Sprintf("\n%s that every file the configured voice and dictionary need is present, and that the analyzer and engine commands can be found.", keyword("Check"))),
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		assets, err := voice.Resolve(opts.VoiceDir, opts.DicDir)
		if err != nil {
			return err
		}

		commands := []string{opts.AnalyzerCommand}
		if opts.EngineName == "hts" {
			commands = append(commands, opts.EngineCommand)
		}
		if !checkAssets(os.Stdout, assets, commands) {
			return errCheckFailed
		}
		return nil
	},
}

// checkAssets prints one line per asset and command and reports whether
// everything required is available.
func checkAssets(w io.Writer, assets voice.Assets, commands []string) bool {
	ok := true
	status := func(role, path string, found, required bool, detail string) {
		mark := okStyle.Render("ok")
		switch {
		case found:
		case required:
			mark = missingStyle.Render("missing")
			ok = false
		default:
			mark = faintStyle.Render("absent")
		}
		_, _ = fmt.Fprintf(w, "%s %-8s %s %s\n", roleStyle.Render(role), mark, path, faintStyle.Render(detail))
	}

	for _, f := range assets.Files() {
		size, found := fileSize(f.Path)
		status(f.Role, f.Path, found, f.Required, size)
	}
	if err := voice.CheckDictionary(assets.DicDir); err != nil {
		status("dictionary", assets.DicDir, false, true, err.Error())
	} else {
		status("dictionary", assets.DicDir, true, true, "")
	}

	for _, line := range commands {
		words, err := subprocess.ParseCommand(line)
		if err != nil {
			status("command", line, false, true, err.Error())
			continue
		}
		err = subprocess.CheckBinary(words[0])
		status("command", words[0], err == nil, true, "")
	}
	return ok
}

func fileSize(path string) (string, bool) {
	st, err := os.Stat(filepath.Clean(path))
	if err != nil || st.IsDir() {
		return "", false
	}
	return humanize.Bytes(uint64(st.Size())), true
}
