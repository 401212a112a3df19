package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scraphq/admind/pkg/admin"
	"github.com/scraphq/admind/pkg/cli/internal/output"
	"github.com/scraphq/admind/pkg/config"
	"github.com/scraphq/admind/pkg/logging"
)

// serveFlagVals is the package-level instance bound to cobra flags.
var serveFlagVals serveFlags

type serveFlags struct {
	port         int
	configFile   string
	logLevel     string
	logFormat    string
	readTimeout  int
	writeTimeout int
	corsOrigins  []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin API server (foreground)",
	Long: `Start the admin API server.

Credentials for the data-service projects are read from ADMIND_*
environment variables and the process refuses to start while any are
missing. Server settings come from an optional settings file, overridden
by flags.`,
	Example: `  # Start with defaults (port 8090)
  admind serve

  # Start with a settings file on a custom port
  admind serve --config admind.yaml --port 9000

  # Verbose JSON logs for log shippers
  admind serve --log-level debug --log-format json

  # Allow the admin portal origin
  admind serve --cors-origin https://admin.scraphq.example`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, &serveFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP server port")
	serveCmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to server settings file")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	serveCmd.Flags().IntVar(&f.readTimeout, "read-timeout", config.DefaultReadTimeout, "Read timeout in seconds")
	serveCmd.Flags().IntVar(&f.writeTimeout, "write-timeout", config.DefaultWriteTimeout, "Write timeout in seconds")
	serveCmd.Flags().StringSliceVar(&f.corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
}

// loadServerSettings resolves the effective server settings: file values
// (or defaults) overridden by flags the user actually set.
func loadServerSettings(f *serveFlags, changed func(string) bool) (config.Server, error) {
	srv := config.DefaultServer()
	if f.configFile != "" {
		loaded, err := config.LoadServerFile(f.configFile)
		if err != nil {
			return config.Server{}, fmt.Errorf("loading %s: %w", f.configFile, err)
		}
		srv = *loaded
	}

	if changed("port") {
		srv.Port = f.port
	}
	if changed("log-level") {
		srv.LogLevel = f.logLevel
	}
	if changed("log-format") {
		srv.LogFormat = f.logFormat
	}
	if changed("read-timeout") {
		srv.ReadTimeout = f.readTimeout
	}
	if changed("write-timeout") {
		srv.WriteTimeout = f.writeTimeout
	}
	if changed("cors-origin") {
		srv.CORSOrigins = f.corsOrigins
	}
	return srv, nil
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	srv, err := loadServerSettings(f, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(srv.LogLevel),
		Format: logging.ParseFormat(srv.LogFormat),
	})

	// Fail before binding the port if any credential is missing.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	api := admin.New(cfg,
		admin.WithLogger(log),
		admin.WithVersion(Version),
		admin.WithServerSettings(srv),
	)
	if err := api.Start(); err != nil {
		return fmt.Errorf("starting admin API: %w", err)
	}

	printServeStartupMessage(srv.Port, cfg.AdminEnabled)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutting down...")

	if err := api.Stop(); err != nil {
		output.Warn("admin API shutdown error: %v", err)
	}
	fmt.Println("Server stopped")
	return nil
}

func printServeStartupMessage(port int, adminEnabled bool) {
	fmt.Printf("admind %s listening on http://localhost:%d\n", Version, port)
	if !adminEnabled {
		fmt.Println("Admin access is DISABLED; data routes return 403.")
		fmt.Println("Set ADMIND_ADMIN_ENABLED=true to enable them.")
	}
	fmt.Println("Press Ctrl+C to stop")
}
