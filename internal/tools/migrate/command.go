package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/atifjaved999/mini-coaching/internal/config"
	"github.com/atifjaved999/mini-coaching/internal/database"
	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/tools/common"
	"github.com/atifjaved999/mini-coaching/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

// NewRootCommand builds the schema tool: `up` applies the migrations,
// `status` reports which tables exist, `plan` lists what `up` would do.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or inspect the database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before connecting")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "print a single JSON result instead of the UI")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-command timeout")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply the schema and the overlap exclusion constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "schema up", "up", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db.WithContext(ctx)); err != nil {
					return nil, err
				}
				return []string{"schema migrated"}, nil
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "schema status", "status", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return tableStatus(db.WithContext(ctx), "present", "missing"), nil
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "List what `up` would create without applying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "schema plan", "plan", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return tableStatus(db.WithContext(ctx), "keep", "create"), nil
			})
			return err
		},
	})
	return root
}

func run(opts *options, title, action string, fn func(context.Context) ([]string, error)) ([]string, error) {
	wrapped := func(ctx context.Context) ([]string, error) {
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		return fn(ctx)
	}
	if opts.ci {
		details, err := wrapped(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		return details, err
	}
	return ui.Run(title, wrapped)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func tableStatus(db *gorm.DB, haveWord, missWord string) []string {
	models := []any{
		&domain.User{},
		&domain.Role{},
		&domain.UserRole{},
		&domain.Session{},
		&domain.Participation{},
		&domain.PasswordResetToken{},
	}
	migrator := db.Migrator()
	out := make([]string, 0, len(models))
	for _, m := range models {
		word := missWord
		if migrator.HasTable(m) {
			word = haveWord
		}
		out = append(out, fmt.Sprintf("%s %s", word, tableName(db, m)))
	}
	return out
}

func tableName(db *gorm.DB, model any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}
