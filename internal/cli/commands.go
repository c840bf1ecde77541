package cli

import (
	"fmt"
	"os"

	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/server"
	"github.com/osa911/userconsole/internal/version"

	"github.com/spf13/cobra"
)

func newServeCommand(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web console",
		Long: `Serve the web console on CONSOLE_PORT (default 3000) until interrupted.

Example:
  userconsole serve --port 8080 --api-url http://localhost:8000/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			if err := logging.InitLogger(cfg.Logging()); err != nil {
				return logging.WrapError(err, "failed to initialize logger")
			}
			logger := logging.GetGlobalLogger()
			logger.Info("Starting user console %s", version.Info())

			return server.Run(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides CONSOLE_PORT)")
	return cmd
}

func newConfigCommand(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `View and edit the CLI configuration file.`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ConfigDir(app.ConfigDir)
			if err != nil {
				return err
			}
			path, err := ConfigPath(app.ConfigDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Configuration directory: %s\n", dir)
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(app.Out, "Config file:             %s\n", path)
			} else {
				fmt.Fprintf(app.Out, "\nNo config file yet. Run 'userconsole config set --api-url URL' to create one.\n")
			}
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Print the config file and the API base URL the commands resolve to.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := LoadFile(app.ConfigDir)
			if err != nil {
				return err
			}
			cfg, err := app.Config()
			if err != nil {
				return err
			}

			return writeJSON(app.Out, struct {
				File    *FileConfig `json:"file"`
				BaseURL string      `json:"base_url"`
			}{
				File:    file,
				BaseURL: cfg.BaseURL(),
			})
		},
	})

	var apiURL, publicURL string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Save values to the config file",
		Long: `Save the API URL or the console's public URL to the config file.
Flags that are not given keep their saved value.

Example:
  userconsole config set --api-url https://users.example.com/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := LoadFile(app.ConfigDir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				file.APIURL = apiURL
			}
			if cmd.Flags().Changed("public-url") {
				file.PublicURL = publicURL
			}
			if err := SaveFile(app.ConfigDir, file); err != nil {
				return err
			}

			path, _ := ConfigPath(app.ConfigDir)
			fmt.Fprintf(app.Out, "Saved %s\n", path)
			return nil
		},
	}
	// shadows the global --api-url, which would only be an override here
	setCmd.Flags().StringVar(&apiURL, "api-url", "", "Users API base URL")
	setCmd.Flags().StringVar(&publicURL, "public-url", "", "Public URL of the web console")
	configCmd.AddCommand(setCmd)

	return configCmd
}

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.jsonOutput() {
				return writeJSON(app.Out, version.GetBuildInfo())
			}
			fmt.Fprintf(app.Out, "userconsole %s\n", version.Info())
			return nil
		},
	}
}
