package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(
		newConfigShowCmd(opts),
		newConfigPathCmd(opts),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration after defaults, the config file
and environment overrides are merged. Prints YAML unless --format json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.format == "json" {
				return showJSON(out, cfg)
			}
			return showYAML(out, cfg, configSource(opts))
		},
	}
}

// showYAML prints cfg as YAML under a source header.
func showYAML(w io.Writer, cfg *config.Config, source string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = fmt.Fprintf(w, "# Current Configuration\n# Source: %s\n\n%s", source, data)
	return err
}

// showJSON prints cfg as JSON using the YAML key names.
func showJSON(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to convert config: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			paths := []string{"./study-tracker.yaml", config.DefaultConfigPath()}
			if env := os.Getenv(config.EnvConfig); env != "" {
				paths = append([]string{env}, paths...)
			}
			if opts.configPath != "" {
				paths = append([]string{opts.configPath}, paths...)
			}

			_, _ = fmt.Fprintln(out, "Configuration file search paths (in order of precedence):")
			_, _ = fmt.Fprintln(out)
			for i, p := range paths {
				exists := "not found"
				if _, err := os.Stat(p); err == nil {
					exists = "found"
				}
				_, _ = fmt.Fprintf(out, "  %d. %s [%s]\n", i+1, p, exists)
			}
			_, _ = fmt.Fprintln(out)
			_, err := fmt.Fprintln(out, "Active configuration:", configSource(opts))
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		output string
	)

	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"reset"},
		Short:   "Write the default configuration to a file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			path := output
			if path == "" {
				path = config.DefaultConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				_, _ = fmt.Fprintf(out, "Configuration file already exists at: %s\n", path)
				_, _ = fmt.Fprint(out, "Overwrite? [y/N]: ")

				if !confirm(cmd.InOrStdin()) {
					_, _ = fmt.Fprintln(out, "Init cancelled.")
					return nil
				}
			}

			if err := config.Save(config.Default(), path); err != nil {
				return err
			}

			_, err := fmt.Fprintf(out, "Default configuration written to: %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite without asking")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: ~/.config/study-tracker/config.yaml)")

	return cmd
}

// confirm reads a yes/no answer; anything but y or yes is no.
func confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// configSource describes where the effective configuration came from.
func configSource(opts *globalOptions) string {
	if path := config.NewLoader(opts.configPath).Path(); path != "" {
		return path
	}
	return "defaults (no config file found)"
}
