package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/myasin/meetnotes/internal/api"
	"github.com/myasin/meetnotes/internal/app"
	"github.com/myasin/meetnotes/internal/capture"
	"github.com/myasin/meetnotes/internal/config"
	"github.com/myasin/meetnotes/internal/logging"
	"github.com/myasin/meetnotes/internal/model"
	"github.com/myasin/meetnotes/internal/record"
	"github.com/myasin/meetnotes/internal/storage"
	"github.com/myasin/meetnotes/internal/summarize"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "meetnotes",
		Short: "Meeting notes with live transcription and AI summaries",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listCmd())

	// Running without a subcommand opens the TUI.
	rootCmd.RunE = tuiCmd().RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func openRepo(cfg config.Config) (*storage.Repository, error) {
	repo, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return repo, nil
}

// resolveToken prefers the config/env token, falling back to the one
// saved in the database.
func resolveToken(cfg config.Config, repo *storage.Repository) string {
	if cfg.Token != "" {
		return cfg.Token
	}
	tok, err := repo.Token()
	if err != nil {
		slog.Warn("read stored token", "error", err)
		return ""
	}
	return tok
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive meeting notes interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			recorder := capture.New(cfg.SocketPath, cfg.Locale)
			ctrl := record.New(recorder, repo)
			sum := summarize.New(cfg.Endpoint, resolveToken(cfg, repo))

			p := tea.NewProgram(app.New(repo, ctrl, sum), tea.WithAltScreen())

			ctrl.OnUpdate = func(eventID int64, text string) {
				p.Send(app.LiveTextMsg{EventID: eventID, Text: text})
			}

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the summarization proxy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			if addr == "" {
				addr = cfg.ServeAddr
			}

			srv := api.New(addr, cfg.Endpoint, resolveToken(cfg, repo))
			slog.Info("starting proxy", "addr", addr)
			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func listCmd() *cobra.Command {
	var viewName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, err := openRepo(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			view, err := parseView(viewName)
			if err != nil {
				return err
			}

			events := repo.Events(view, nil)
			if len(events) == 0 {
				fmt.Println("No events.")
				return nil
			}
			for _, ev := range events {
				marker := " "
				if ev.Summary != "" {
					marker = "*"
				}
				fmt.Printf("%s %s  %-30s %s\n", marker, ev.Date.Format("2006-01-02 15:04"), ev.Title, ev.Location)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&viewName, "view", "all", "which events to list: today, week, month, all")
	return cmd
}

func parseView(name string) (model.View, error) {
	switch name {
	case "today":
		return model.ViewToday, nil
	case "week":
		return model.ViewWeek, nil
	case "month":
		return model.ViewMonth, nil
	case "all":
		return model.ViewAll, nil
	}
	return "", fmt.Errorf("unknown view %q", name)
}
