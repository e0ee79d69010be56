package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/akashicode/pdf2text/internal/config"
	"github.com/akashicode/pdf2text/internal/display"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Long: `Writes the built-in defaults as YAML so they can be edited.

Without a path the file goes to ~/.pdf2text/config.yaml, where pdf2text
looks for it on every run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := defaultConfigPath()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		path = args[0]
	}
	if err := writeDefaultConfig(path, initForce); err != nil {
		return err
	}
	display.FileCreated(cmd.OutOrStdout(), path)
	return nil
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pdf2text", "config.yaml"), nil
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	out, err := yaml.Marshal(appconfig.Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
