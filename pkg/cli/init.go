package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/scraphq/admind/pkg/config"
)

var initFlagVals initFlags

type initFlags struct {
	output      string
	force       bool
	interactive bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter server settings file",
	Long: `Create a starter admind.yaml with the server settings.

The file carries only HTTP server settings. Credentials stay in ADMIND_*
environment variables and are never written to disk.`,
	Example: `  # Create admind.yaml with defaults
  admind init

  # Interactive setup
  admind init -i

  # Custom filename, overwriting an existing file
  admind init -o staging.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(&initFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	f := &initFlagVals
	initCmd.Flags().StringVarP(&f.output, "output", "o", "admind.yaml", "Output filename")
	initCmd.Flags().BoolVar(&f.force, "force", false, "Overwrite an existing file")
	initCmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Prompt for settings")
}

func runInit(f *initFlags) error {
	srv := config.DefaultServer()

	if f.interactive {
		answered, err := promptServerSettings(srv)
		if err != nil {
			return err
		}
		srv = answered
	}

	if err := writeServerFile(f.output, srv, f.force); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", f.output)
	fmt.Println("Set the ADMIND_* credential variables, then run: admind serve --config", f.output)
	return nil
}

// promptServerSettings walks the user through the server settings.
func promptServerSettings(srv config.Server) (config.Server, error) {
	portStr := strconv.Itoa(srv.Port)
	level := srv.LogLevel
	format := srv.LogFormat
	var origins string
	confirmed := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which port should the admin API listen on?").
				Value(&portStr).
				Validate(func(s string) error {
					p, err := strconv.Atoi(s)
					if err != nil || p < 1 || p > 65535 {
						return errors.New("port must be a number between 1 and 65535")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&level),
			huh.NewSelect[string]().
				Title("Log format").
				Options(
					huh.NewOption("text (human readable)", "text"),
					huh.NewOption("json (for log shippers)", "json"),
				).
				Value(&format),
			huh.NewInput().
				Title("Allowed CORS origin (empty for none)").
				Placeholder("https://admin.scraphq.example").
				Value(&origins),
			huh.NewConfirm().
				Title("Write the file?").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return config.Server{}, err
	}
	if !confirmed {
		return config.Server{}, errors.New("aborted")
	}

	srv.Port, _ = strconv.Atoi(portStr)
	srv.LogLevel = level
	srv.LogFormat = format
	if origins != "" {
		srv.CORSOrigins = []string{origins}
	}
	return srv, nil
}

// writeServerFile marshals the settings to path. Without force an existing
// file is left alone.
func writeServerFile(path string, srv config.Server, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(srv)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	header := []byte("# admind server settings. Credentials are NOT stored here;\n# set the ADMIND_* environment variables instead.\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
