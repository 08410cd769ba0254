package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/jtalk/internal/subprocess"
	"github.com/dgnsrekt/jtalk/tts"
	"github.com/dgnsrekt/jtalk/tts/audio"
	"github.com/dgnsrekt/jtalk/tts/engines/hts"
	"github.com/dgnsrekt/jtalk/tts/frontend"
)

const configHeader = `# jtalk configuration
#
# voice_dir holds the HTS voice (dur.pdf, mgc.pdf, lf0.pdf, tree-*.inf, *.win*)
# and dic_dir a compiled MeCab dictionary (sys.dic, unk.dic, char.bin,
# matrix.bin). Every key can also be set as JTALK_<KEY>, e.g.
# JTALK_ENGINE_NAME=mock.

`

type analyzerConfig struct {
	Command string `yaml:"command"`
}

type engineConfig struct {
	// hts or mock
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	// 3 for voices with a low-pass filter stream
	Streams int    `yaml:"streams"`
	Timeout string `yaml:"timeout"`
}

type audioConfig struct {
	// auto, device or mock
	Mode         string `yaml:"mode"`
	PollInterval string `yaml:"poll_interval"`
}

// fileConfig mirrors the keys read through viper.
type fileConfig struct {
	VoiceDir  string         `yaml:"voice_dir"`
	DicDir    string         `yaml:"dic_dir"`
	Pitch     int            `yaml:"pitch"`
	WorkDir   string         `yaml:"work_dir"`
	Analyzer  analyzerConfig `yaml:"analyzer"`
	Engine    engineConfig   `yaml:"engine"`
	Audio     audioConfig    `yaml:"audio"`
	Synthesis tts.Params     `yaml:"synthesis"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		VoiceDir: "~/.local/share/jtalk/voice",
		DicDir:   "~/.local/share/jtalk/dic",
		Pitch:    tts.DefaultPitchPeriod,
		WorkDir:  os.TempDir(),
		Analyzer: analyzerConfig{Command: frontend.DefaultMeCabCommand},
		Engine: engineConfig{
			Name:    "hts",
			Command: hts.DefaultCommand,
			Streams: 2,
			Timeout: subprocess.DefaultTimeout.String(),
		},
		Audio: audioConfig{
			Mode:         "auto",
			PollInterval: audio.DefaultPollInterval.String(),
		},
		Synthesis: tts.DefaultParams(),
	}
}

// defaultConfig renders the default configuration file.
func defaultConfig() ([]byte, error) {
	body, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return nil, fmt.Errorf("unable to render default config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the jtalk config file",
	Long:    paragraph(fmt.Sprintf("\n%s the jtalk config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("jtalk config\njtalk config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("jtalk", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		if len(configDirs) == 0 {
			return errors.New("no configuration directory available")
		}
		configFile = filepath.Join(configDirs[0], "jtalk.yml")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}
		data, err := defaultConfig()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configFile, data, 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
