package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
)

// ignoredSegments are first path segments that are never club ids and
// should not be reported as suspicious.
var ignoredSegments = map[string]bool{
	"":               true,
	"favicon.ico":    true,
	"not-authorized": true,
	"robots.txt":     true,
	"api":            true,
}

// IsIgnoredSegment reports whether s is a known non-club path segment.
func IsIgnoredSegment(s string) bool {
	return ignoredSegments[s]
}

// ValidTenantID accepts only canonical hyphenated UUIDs of RFC 4122 variant
// and version 1 through 8, plus the nil and max UUIDs.
func ValidTenantID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if id == uuid.Nil || strings.EqualFold(s, "ffffffff-ffff-ffff-ffff-ffffffffffff") {
		return true
	}
	return id.Variant() == uuid.RFC4122 && id.Version() >= 1 && id.Version() <= 8
}

// canonicalTenantID lowercases a valid id the way the database prints it.
func canonicalTenantID(s string) string {
	id, err := uuid.Parse(s)
	if err != nil {
		return s
	}
	return id.String()
}

// Memberships is the lookup side of the membership store.
type Memberships interface {
	FindMembership(ctx context.Context, userID, clubID string) (models.ClubUser, error)
	FindFirstMembership(ctx context.Context, userID string) (models.ClubUser, error)
}

// Trials reads a club's trial expiry.
type Trials interface {
	TrialEndsAt(ctx context.Context, clubID string) (*time.Time, error)
}

// ResolveMembership finds the user's membership in exactly this club and
// resolves its role name. Malformed club ids are rejected before any lookup.
func ResolveMembership(ctx context.Context, store Memberships, userID, clubID string) (*models.ClubUser, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	if !ValidTenantID(clubID) {
		return nil, ErrInvalidTenant
	}
	clubID = canonicalTenantID(clubID)

	cu, err := store.FindMembership(ctx, userID, clubID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if cu.UserID != userID || cu.ClubID != clubID {
		return nil, ErrNoMembership
	}
	return withDefaultRole(cu), nil
}

func resolveFirstMembership(ctx context.Context, store Memberships, userID string) (*models.ClubUser, error) {
	cu, err := store.FindFirstMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoMembership
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if cu.UserID != userID || cu.ClubID == "" {
		return nil, ErrNoMembership
	}
	return withDefaultRole(cu), nil
}

func withDefaultRole(cu models.ClubUser) *models.ClubUser {
	if cu.Role == "" {
		cu.Role = models.RoleMember
	}
	return &cu
}
