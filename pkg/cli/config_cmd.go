package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scraphq/admind/pkg/cli/internal/output"
	"github.com/scraphq/admind/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved credential configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved projects with key material redacted",
	Long: `Show which URL and keys each logical project resolved to after the
fallback chain (explicit project variables, then shared ADMIND_DATA_*,
then the auth project). Keys are redacted to their first characters so
two projects can be compared without exposing secrets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printRedacted(cfg)
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the environment has a complete credential set",
	Long: `Resolve all project credentials the same way serve does and report the
first missing variable, without starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		state := "disabled"
		if cfg.AdminEnabled {
			state = "enabled"
		}
		fmt.Printf("Configuration OK: %d projects resolved, admin access %s\n",
			len(cfg.Redacted()), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
}

// redactedProject is the JSON shape of one resolved project.
type redactedProject struct {
	URL        string `json:"url"`
	AnonKey    string `json:"anonKey"`
	ServiceKey string `json:"serviceKey"`
}

type redactedConfig struct {
	AdminEnabled bool                       `json:"adminEnabled"`
	Projects     map[string]redactedProject `json:"projects"`
}

func printRedacted(cfg *config.Config) error {
	redacted := cfg.Redacted()

	if jsonOutput {
		view := redactedConfig{
			AdminEnabled: cfg.AdminEnabled,
			Projects:     make(map[string]redactedProject, len(redacted)),
		}
		for p, creds := range redacted {
			view.Projects[string(p)] = redactedProject{
				URL:        creds.URL,
				AnonKey:    creds.AnonKey,
				ServiceKey: creds.ServiceKey,
			}
		}
		return output.JSON(view)
	}

	names := make([]string, 0, len(redacted))
	for p := range redacted {
		names = append(names, string(p))
	}
	sort.Strings(names)

	pairs := [][2]string{{"PROJECT", "URL\tANON KEY\tSERVICE KEY"}}
	for _, name := range names {
		creds := redacted[config.Project(name)]
		pairs = append(pairs, [2]string{
			name,
			fmt.Sprintf("%s\t%s\t%s", creds.URL, creds.AnonKey, creds.ServiceKey),
		})
	}
	if err := output.KeyValues(pairs); err != nil {
		return err
	}

	state := "disabled"
	if cfg.AdminEnabled {
		state = "enabled"
	}
	fmt.Printf("\nAdmin access: %s\n", state)
	return nil
}
