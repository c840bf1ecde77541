package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/osa911/userconsole/internal/client"
	"github.com/osa911/userconsole/internal/config"
	"github.com/osa911/userconsole/internal/interfaces"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/service"
	"github.com/osa911/userconsole/internal/version"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Component names the CLI in user agents and logs
const Component = "userconsole-cli"

// App carries everything the commands share. Zero-valued fields are filled
// from the process on first use, so tests only set what they need.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Logger receives the client's request and error logs. The CLI default
	// writes to client.log in the config directory, never to the terminal.
	Logger *logging.Logger
	// ConfigDir holds config.json; empty means ~/.userconsole
	ConfigDir string
	// LoadConfig reads env configuration, config.Load by default
	LoadConfig func() (*config.Config, error)
	// Interactive enables the spinner
	Interactive bool

	// set by the persistent flags
	apiURL string
	output string

	cfg *config.Config
	api interfaces.UserAPI
}

// newApp returns an App bound to the real terminal
func newApp() *App {
	return &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		LoadConfig:  config.Load,
		Interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewRootCommand builds the full command tree around app
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "userconsole",
		Short: "User console CLI",
		Long: `userconsole manages the users of a remote users API from the terminal.
Every command talks to the API directly; 'userconsole serve' starts the web console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.checkOutput()
		},
	}
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	rootCmd.PersistentFlags().StringVar(&app.apiURL, "api-url", "", "Base URL of the users API (overrides API_URL and the config file)")
	rootCmd.PersistentFlags().StringVarP(&app.output, "output", "o", OutputTable, "Output format: table or json")

	rootCmd.AddCommand(newUsersCommand(app))
	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newVersionCommand(app))

	return rootCmd
}

// Execute runs the CLI against the process arguments and exits non-zero on failure
func Execute() {
	app := newApp()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := NewRootCommand(app).ExecuteContext(ctx)
	stop()
	app.close()
	if err != nil {
		fmt.Fprintf(app.Err, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Config resolves the effective configuration. The --api-url flag beats
// API_URL, which beats api_url from the config file; the public URL falls
// back to the file the same way.
func (a *App) Config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	load := a.LoadConfig
	if load == nil {
		load = config.Parse
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	file, err := LoadFile(a.ConfigDir)
	if err != nil {
		return nil, err
	}
	if cfg.APIURL == "" {
		cfg.APIURL = file.APIURL
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = file.PublicURL
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}

	a.cfg = cfg
	return cfg, nil
}

// API returns the users API facade for the resolved base URL
func (a *App) API() (interfaces.UserAPI, error) {
	if a.api != nil {
		return a.api, nil
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	logger, err := a.logger()
	if err != nil {
		return nil, err
	}

	a.api = service.NewUserService(client.New(client.Config{
		BaseURL:   cfg.BaseURL(),
		Timeout:   cfg.APITimeout,
		Logger:    logger,
		UserAgent: version.UserAgent(Component),
	}))
	return a.api, nil
}

func (a *App) logger() (*logging.Logger, error) {
	if a.Logger != nil {
		return a.Logger, nil
	}
	dir, err := ConfigDir(a.ConfigDir)
	if err != nil {
		return nil, err
	}

	logConfig := logging.DefaultConfig()
	logConfig.File = filepath.Join(dir, "client.log")
	logConfig.FileOnly = true
	if a.cfg != nil && a.cfg.LogLevel != "" {
		logConfig.Level = a.cfg.LogLevel
	}
	logger, err := logging.NewLogger(logConfig)
	if err != nil {
		return nil, logging.WrapError(err, "failed to initialize logger")
	}
	a.Logger = logger
	return logger, nil
}

func (a *App) close() {
	if a.Logger != nil {
		a.Logger.Close()
	}
}

// spin shows a spinner with msg until the returned stop is called
func (a *App) spin(msg string) (stop func()) {
	if !a.Interactive {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(a.Err))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
