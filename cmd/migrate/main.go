package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventshuffle/internal/config"
	"eventshuffle/internal/container"
	"eventshuffle/internal/service"
)

type options struct {
	driver      string
	databaseURL string
	sqlitePath  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the eventshuffle database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Store driver (postgres or sqlite), defaults to STORE_DRIVER")
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL, defaults to DATABASE_URL")
	rootCmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite-path", "", "SQLite file, defaults to SQLITE_PATH")

	rootCmd.AddCommand(upCmd(opts))
	rootCmd.AddCommand(dropCmd(opts))
	rootCmd.AddCommand(seedCmd(opts))

	return rootCmd
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.FromEnv()

	if opts.driver != "" {
		cfg.StoreDriver = opts.driver
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	if opts.sqlitePath != "" {
		cfg.SQLitePath = opts.sqlitePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withStore(cmd *cobra.Command, opts *options, fn func(ctx context.Context, store *container.Store) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := container.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.StoreDriver, err)
	}
	defer store.Close()

	return fn(ctx, store)
}

func upCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store *container.Store) error {
				ran, err := store.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(ran) == 0 {
					fmt.Fprintln(out, "Schema is up to date")
					return nil
				}
				for _, name := range ran {
					fmt.Fprintf(out, "Applied %s\n", name)
				}
				return nil
			})
		},
	}
}

func dropCmd(opts *options) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table, including migration history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to drop tables without --yes")
			}
			return withStore(cmd, opts, func(ctx context.Context, store *container.Store) error {
				if err := store.Drop(ctx); err != nil {
					return fmt.Errorf("failed to drop tables: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All tables dropped")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm dropping all data")

	return cmd
}

func seedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and insert a sample event with votes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store *container.Store) error {
				if _, err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				id, err := seed(ctx, store, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded event %d\n", id)
				return nil
			})
		},
	}
}

var sampleVotes = []struct {
	name  string
	dates []string
}{
	{"John", []string{"2014-01-01", "2014-01-05"}},
	{"Julia", []string{"2014-01-01"}},
	{"Paul", []string{"2014-01-01"}},
	{"Daisy", []string{"2014-01-01", "2014-01-12"}},
	{"Dick", []string{"2014-01-01"}},
}

func seed(ctx context.Context, store *container.Store, out io.Writer) (int64, error) {
	events := service.NewEventService(store.EventRepository(), nil, zap.NewNop(), 0)

	created, err := events.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01", "2014-01-05", "2014-01-12"}, "")
	if err != nil {
		return 0, fmt.Errorf("failed to create sample event: %w", err)
	}

	for _, v := range sampleVotes {
		if _, err := events.SubmitVote(ctx, created.ID, v.name, v.dates); err != nil {
			return 0, fmt.Errorf("failed to add votes for %s: %w", v.name, err)
		}
		fmt.Fprintf(out, "Voted %s: %v\n", v.name, v.dates)
	}

	return created.ID, nil
}
