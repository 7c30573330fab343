package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/observability"
)

var (
	errMissingDatabaseURL = errors.New("--database-url or DATABASE_URL is required")
	errDenied             = errors.New("access denied")
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateClubCommand(opts *options) *cobra.Command {
	var name, owner string
	var trialDays int

	cmd := &cobra.Command{
		Use:   "create-club",
		Short: "Create a club with admin and member roles and its owner as admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUUID("owner", owner); err != nil {
				return err
			}
			if trialDays <= 0 {
				return fmt.Errorf("--trial-days must be positive")
			}
			store, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			club, err := store.CreateClub(cmd.Context(), name, owner, time.Now().Add(time.Duration(trialDays)*24*time.Hour))
			if err != nil {
				return fmt.Errorf("create club: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "club %s created, trial ends %s\n", club.ID, club.TrialEndsAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "club name")
	cmd.Flags().StringVar(&owner, "owner", "", "user id of the club's first admin")
	cmd.Flags().IntVar(&trialDays, "trial-days", positiveEnv("TRIAL_DAYS", 14), "trial length in days")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newGrantAccessCommand(opts *options) *cobra.Command {
	var clubID, userID, role string

	cmd := &cobra.Command{
		Use:   "grant-access",
		Short: "Add a user to a club with the given role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !access.ValidTenantID(clubID) {
				return fmt.Errorf("--club: %w", access.ErrInvalidTenant)
			}
			if err := requireUUID("user", userID); err != nil {
				return err
			}
			store, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			cu, err := store.GrantRole(cmd.Context(), userID, clubID, role)
			if err != nil {
				return fmt.Errorf("grant %s: %w", role, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s is now %s of club %s\n", cu.UserID, cu.Role, cu.ClubID)
			return nil
		},
	}
	cmd.Flags().StringVar(&clubID, "club", "", "club id")
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", models.RoleMember, "role name")
	_ = cmd.MarkFlagRequired("club")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExtendTrialCommand(opts *options) *cobra.Command {
	var clubID, until string
	var days int

	cmd := &cobra.Command{
		Use:   "extend-trial",
		Short: "Move a club's trial or subscription end date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !access.ValidTenantID(clubID) {
				return fmt.Errorf("--club: %w", access.ErrInvalidTenant)
			}
			endsAt := time.Now().Add(time.Duration(days) * 24 * time.Hour)
			if until != "" {
				t, err := time.Parse(time.RFC3339, until)
				if err != nil {
					return fmt.Errorf("--until: %w", err)
				}
				endsAt = t
			} else if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			store, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetTrialEndsAt(cmd.Context(), clubID, endsAt); err != nil {
				return fmt.Errorf("extend trial: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "club %s trial ends %s\n", clubID, endsAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&clubID, "club", "", "club id")
	cmd.Flags().IntVar(&days, "days", 0, "days from now")
	cmd.Flags().StringVar(&until, "until", "", "absolute end time (RFC 3339)")
	cmd.MarkFlagsMutuallyExclusive("days", "until")
	_ = cmd.MarkFlagRequired("club")
	return cmd
}

func newCheckAccessCommand(opts *options) *cobra.Command {
	var userID, clubID, section, action string
	var trialGated []string

	cmd := &cobra.Command{
		Use:   "check-access",
		Short: "Run the club gates for a user and report the decision",
		Long: `Runs the same trial guard, access gate and permission check an HTTP
request would, for the given user, club, section and action.

Exits non-zero when access is denied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := access.LoadTable(opts.permissionsFile)
			if err != nil {
				return err
			}
			store, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			deps := access.Deps{
				Sessions:    staticSession{id: models.Identity{ID: userID}},
				Memberships: store,
				Trials:      store,
				Table:       table,
				Logger:      observability.Discard(),
			}
			var guard *access.TrialGuard
			for _, s := range trialGated {
				if s == section {
					guard = access.NewTrialGuard(deps)
				}
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, "/"+clubID+"/"+section, nil)
			if err != nil {
				return err
			}
			res := access.Chain(guard, access.NewGate(deps))(access.Request{Writer: discardWriter{}, Req: req, ClubID: clubID})

			out := cmd.OutOrStdout()
			if !res.Allowed() {
				fmt.Fprintf(out, "deny: redirect to %s (%s)\n", res.Redirect.Destination, res.Outcome)
				return errDenied
			}
			act := table.ResolveAction(section, action)
			if !access.HasAccess(&res.Props.ClubUser, res.Props.Permissions, section, act) {
				fmt.Fprintf(out, "deny: role %s may not %s %s\n", res.Props.ClubUser.Role, act, section)
				return errDenied
			}
			fmt.Fprintf(out, "allow: role %s may %s %s\n", res.Props.ClubUser.Role, act, section)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&clubID, "club", "", "club id")
	cmd.Flags().StringVar(&section, "section", "", "section name")
	cmd.Flags().StringVar(&action, "action", access.DefaultAction, "action name")
	cmd.Flags().StringSliceVar(&trialGated, "trial-gated", []string{"reminders"}, "sections behind the trial guard")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("club")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

// staticSession authenticates every request as one identity.
type staticSession struct {
	id models.Identity
}

func (s staticSession) Session(http.ResponseWriter, *http.Request) *models.Identity {
	if s.id.ID == "" {
		return nil
	}
	id := s.id
	return &id
}

type discardWriter struct{}

func (discardWriter) Header() http.Header { return http.Header{} }

func (discardWriter) Write(b []byte) (int, error) { return len(b), nil }

func (discardWriter) WriteHeader(int) {}

func requireUUID(flag, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("--%s must be a UUID: %w", flag, err)
	}
	return nil
}

func positiveEnv(key string, def int) int {
	if n, err := strconv.Atoi(envOr(key, "")); err == nil && n > 0 {
		return n
	}
	return def
}
