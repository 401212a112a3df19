package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput is a persistent flag available to all subcommands.
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "admind",
	Short: "admind is the admin API for the scrap marketplace data projects",
	Long: `admind serves a privileged REST API over the platform's data-service
projects: scrap types and per-kg pricing, public-site content, and
vendor listings. Every data route requires a bearer token belonging to
a user whose stored role is admin.

Credentials are read from ADMIND_* environment variables; server
settings (port, timeouts, logging, CORS) come from flags or an optional
admind.yaml. Run 'admind init' to generate one.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
