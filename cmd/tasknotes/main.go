package main

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/config"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/engine"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/mirror"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/storage"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/ui/dashboard"
	uistats "github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/ui/stats"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "tasknotes",
		Short: "Pomodoro session timer with task notes integration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(statsCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(mirrorCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

// app holds the wired persistence stack shared by all commands.
type app struct {
	cfg      config.Config
	file     *storage.StateFile
	logStore *storage.LogStore
	history  *storage.Service
	mir      *mirror.Mirror
}

func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	file := storage.NewStateFile(config.DefaultStatePath(cfg.Storage.DataDir))
	logStore := storage.NewLogStore(file)

	var store storage.Store = logStore
	if cfg.Storage.Backend == config.BackendDailyNotes {
		vault := storage.NewDailyNoteVault(cfg.Storage.DailyNotesDir, cfg.Storage.DailyNotesEnabled)
		store = storage.NewDailyStore(vault, logStore)
	}
	history := storage.NewService(store)

	a := &app{
		cfg:      cfg,
		file:     file,
		logStore: logStore,
		history:  history,
	}

	if cfg.Mirror.Enabled {
		cooldown := time.Duration(cfg.Mirror.CooldownMillis) * time.Millisecond
		a.mir = mirror.New(cfg.Mirror.Path, cooldown, cfg.Durations.WorkMinutes, nil)
		history.OnChange(func() {
			if err := a.rebuildMirror(); err != nil {
				log.Printf("mirror rebuild: %v", err)
			}
		})
	}

	return a, nil
}

// rebuildMirror regenerates the table from the full authoritative
// history, never from a partial view.
func (a *app) rebuildMirror() error {
	entries, err := a.history.Read()
	if err != nil {
		return err
	}
	return a.mir.Rebuild(entries)
}

func runTUI() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	eng := engine.New(a.cfg, a.file, a.history, engine.NoopTracker{})
	if err := eng.Restore(); err != nil {
		return fmt.Errorf("restoring engine state: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	if a.mir != nil {
		go func() {
			err := a.mir.Watch(ctx, func(entries []models.HistoryEntry) {
				// An external edit replaces history wholesale.
				if err := a.history.Write(entries); err != nil {
					log.Printf("mirror import: %v", err)
				}
			})
			if err != nil {
				log.Printf("mirror watch: %v", err)
			}
		}()
	}

	defer eng.Close()

	for {
		dashModel := dashboard.New(eng)
		p := tea.NewProgram(dashModel, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			return err
		}

		dashModel = finalModel.(dashboard.Model)
		if dashModel.ShouldQuit() {
			return nil
		}

		if dashModel.ShouldOpenStats() {
			statsModel, err := uistats.New(uistats.TodayView, a.history)
			if err != nil {
				return err
			}
			p := tea.NewProgram(statsModel, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
		}
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a statistics report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			entries, err := a.history.Read()
			if err != nil {
				return err
			}
			fmt.Print(uistats.Report(entries))
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Move flat-log history into per-day daily notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			vault := storage.NewDailyNoteVault(a.cfg.Storage.DailyNotesDir, a.cfg.Storage.DailyNotesEnabled)
			daily := storage.NewDailyStore(vault, a.logStore)
			report, err := storage.MigrateToDaily(a.logStore, daily)
			if err != nil {
				return err
			}
			fmt.Printf("Migrated %d entries across %d days\n", report.Entries, report.Days)
			return nil
		},
	}
}

func mirrorCmd() *cobra.Command {
	var rebuild, doImport bool
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Rebuild or import the markdown mirror table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if a.mir == nil {
				return fmt.Errorf("mirror is disabled in config")
			}
			switch {
			case rebuild:
				if err := a.rebuildMirror(); err != nil {
					return err
				}
				fmt.Printf("Mirror rebuilt at %s\n", a.mir.Path())
			case doImport:
				entries, err := a.mir.Import(time.Now())
				if err != nil {
					return err
				}
				if err := a.history.Write(entries); err != nil {
					return err
				}
				fmt.Printf("Imported %d entries from %s\n", len(entries), a.mir.Path())
			default:
				return fmt.Errorf("pass --rebuild or --import")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "regenerate the mirror from history")
	cmd.Flags().BoolVar(&doImport, "import", false, "replace history with the mirror contents")
	return cmd
}
