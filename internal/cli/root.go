// Package cli implements clubctl, the operator tool for clubs, memberships
// and trials.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/hongminglow/clubcore/internal/storage"
	"github.com/hongminglow/clubcore/internal/storage/postgres"
)

// Store is the persistence clubctl operates on.
type Store interface {
	storage.MembershipStore
	storage.ClubStore
	Close()
}

// Opener connects to the store named by a database URL.
type Opener func(ctx context.Context, databaseURL string) (Store, error)

// OpenPostgres opens the Postgres store; opening applies migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (Store, error) {
	s, err := postgres.NewStore(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type options struct {
	databaseURL     string
	permissionsFile string
	logLevel        string
	open            Opener
}

// NewRootCommand builds the clubctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &options{open: open}

	root := &cobra.Command{
		Use:          "clubctl",
		Short:        "Administer ClubCore clubs, memberships and trials",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	root.PersistentFlags().StringVar(&opts.permissionsFile, "permissions", os.Getenv("PERMISSIONS_FILE"), "YAML permission table (default: built-in table)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level")

	root.AddCommand(
		newMigrateCommand(opts),
		newCreateClubCommand(opts),
		newGrantAccessCommand(opts),
		newExtendTrialCommand(opts),
		newCheckAccessCommand(opts),
	)
	return root
}

func (o *options) connect(cmd *cobra.Command) (Store, error) {
	observability.NewLogger(o.logLevel, cmd.ErrOrStderr())
	if o.databaseURL == "" {
		return nil, errMissingDatabaseURL
	}
	return o.open(cmd.Context(), o.databaseURL)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
