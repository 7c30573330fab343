package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/clubcore/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInviteExpired indicates an invite's expiry has passed.
var ErrInviteExpired = errors.New("invite expired")

// ErrInviteUsed indicates an invite was already accepted.
var ErrInviteUsed = errors.New("invite already accepted")

// ErrInviteRecipient indicates the invite was issued to a different email.
var ErrInviteRecipient = errors.New("invite issued to another email")

// UserStore holds accounts for the built-in auth provider.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// MembershipStore resolves club_users rows joined with their role name.
// Lookups are always scoped by both user and club.
type MembershipStore interface {
	FindMembership(ctx context.Context, userID, clubID string) (models.ClubUser, error)
	FindFirstMembership(ctx context.Context, userID string) (models.ClubUser, error)
	ListMemberships(ctx context.Context, userID string) ([]models.ClubMembership, error)
	GrantRole(ctx context.Context, userID, clubID, roleName string) (models.ClubUser, error)
}

// ClubStore manages tenant rows.
type ClubStore interface {
	CreateClub(ctx context.Context, name, ownerID string, trialEndsAt time.Time) (models.Club, error)
	GetClub(ctx context.Context, clubID string) (models.Club, error)
	TrialEndsAt(ctx context.Context, clubID string) (*time.Time, error)
	SetTrialEndsAt(ctx context.Context, clubID string, endsAt time.Time) error
}

// RecordStore persists section rows. Every call is scoped by club.
type RecordStore interface {
	ListRecords(ctx context.Context, clubID, section string) ([]models.Record, error)
	GetRecord(ctx context.Context, clubID, section, id string) (models.Record, error)
	CreateRecord(ctx context.Context, record models.Record) (models.Record, error)
	UpdateRecord(ctx context.Context, record models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, clubID, section, id string) error
}

// InviteStore issues and redeems club invites. AcceptInvite inserts the
// membership and marks the invite accepted in one transaction.
type InviteStore interface {
	CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error)
	AcceptInvite(ctx context.Context, token string, user models.Identity, now time.Time) (models.ClubUser, error)
}
