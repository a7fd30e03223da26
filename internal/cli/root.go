package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/config"
	dbpkg "github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/db"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/members"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/schedule"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of schedctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "schedctl",
		Short: "Import and reconcile club schedules and member backups",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDetectCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewHashTokenCommand(opts))

	return cmd
}

// app is what a command needs from the configured stores.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	engine  *schedule.Engine
	members *members.Service
	close   func()
}

func openApp(opts *RootOptions, errOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(errOut)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	gdb, err := dbpkg.Open(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	blobs, err := cache.OpenSQLite(cfg.Cache.Path, nil)
	if err != nil {
		_ = dbpkg.Close(gdb)
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &app{
		cfg: cfg,
		log: logger,
		engine: schedule.NewEngine(schedule.NewRepository(gdb), blobs, schedule.Config{
			ClubNames: cfg.ClubNames(),
			Location:  loc,
		}, logger, nil),
		members: members.NewService(members.NewRepository(gdb), logger, nil),
		close: func() {
			_ = blobs.Close()
			_ = dbpkg.Close(gdb)
		},
	}, nil
}

// withApp opens the stores for the duration of fn.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a)
}

// emit writes v as indented JSON or through the text renderer.
func emit(w io.Writer, opts *RootOptions, v any, text func(io.Writer) error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
