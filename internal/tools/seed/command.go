package seed

import (
	"context"
	"fmt"
	"strings"

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
	email   string
}

// NewRootCommand builds the seed tool: `apply` creates the coach and
// client role rows, `dry-run` reports what apply would create, and
// `verify-local-email` checks that a locally created account exists and
// holds at least one role.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed and verify reference data",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before connecting")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "print a single JSON result instead of the UI")

	root.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing role rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed apply", "apply", func(ctx context.Context) ([]string, error) {
				db, err := openDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				report, err := database.SeedSync(db.WithContext(ctx))
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"roles already present"}, nil
				}
				return []string{fmt.Sprintf("created roles: %s", strings.Join(report.CreatedRoles, ", "))}, nil
			})
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "dry-run",
		Short: "Report what apply would create",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed dry-run", "dry-run", func(ctx context.Context) ([]string, error) {
				db, err := openDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return missingRoles(db.WithContext(ctx))
			})
			return err
		},
	})
	verify := &cobra.Command{
		Use:   "verify-local-email",
		Short: "Check that an account exists and holds a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed verify-local-email", "verify-local-email", func(ctx context.Context) ([]string, error) {
				if opts.email == "" {
					return nil, fmt.Errorf("--email is required")
				}
				db, err := openDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return verifyEmail(db.WithContext(ctx), opts.email)
			})
			return err
		},
	}
	verify.Flags().StringVar(&opts.email, "email", "", "account email to verify")
	root.AddCommand(verify)
	return root
}

func run(opts *options, title, action string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		details, err := fn(context.Background())
		common.PrintCIResult(err == nil, title, details, err)
		return details, err
	}
	return ui.Run(title, fn)
}

func openDB(envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return database.Open(cfg)
}

func missingRoles(db *gorm.DB) ([]string, error) {
	out := []string{}
	for _, name := range []string{domain.RoleCoach, domain.RoleClient} {
		var count int64
		if err := db.Model(&domain.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			out = append(out, fmt.Sprintf("would create role %s", name))
		}
	}
	if len(out) == 0 {
		out = append(out, "nothing to do")
	}
	return out, nil
}

func verifyEmail(db *gorm.DB, email string) ([]string, error) {
	var user domain.User
	if err := db.Preload("Roles").Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, fmt.Errorf("account %s: %w", email, err)
	}
	if len(user.Roles) == 0 {
		return nil, fmt.Errorf("account %s holds no role", email)
	}
	names := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		names = append(names, r.Name)
	}
	return []string{fmt.Sprintf("account %s holds roles: %s", email, strings.Join(names, ", "))}, nil
}
