// Package memory is an in-process implementation of the storage interfaces,
// used by tests and local demos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
)

var (
	_ storage.UserStore       = (*Store)(nil)
	_ storage.MembershipStore = (*Store)(nil)
	_ storage.ClubStore       = (*Store)(nil)
	_ storage.RecordStore     = (*Store)(nil)
	_ storage.InviteStore     = (*Store)(nil)
)

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	clubs    map[string]models.Club
	roles    map[string]models.Role
	members  []models.ClubUser
	records  map[string]models.Record
	invites  map[string]models.Invite
	failWith error
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:   map[string]models.User{},
		clubs:   map[string]models.Club{},
		roles:   map[string]models.Role{},
		records: map[string]models.Record{},
		invites: map[string]models.Invite{},
		now:     time.Now,
	}
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// AddClub inserts a club with admin and member roles and returns it.
func (s *Store) AddClub(name string, trialEndsAt *time.Time) models.Club {
	s.mu.Lock()
	defer s.mu.Unlock()
	club := models.Club{ID: uuid.NewString(), Name: name, TrialEndsAt: trialEndsAt, CreatedAt: s.now()}
	s.clubs[club.ID] = club
	for _, name := range []string{models.RoleAdmin, models.RoleMember} {
		role := models.Role{ID: uuid.NewString(), ClubID: club.ID, Name: name}
		s.roles[role.ID] = role
	}
	return club
}

// AddMembership links user and club with the named role; an unknown role name
// yields a membership whose role relation is empty.
func (s *Store) AddMembership(userID, clubID, roleName string) models.ClubUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	cu := models.ClubUser{ID: uuid.NewString(), UserID: userID, ClubID: clubID, CreatedAt: s.now()}
	if role, ok := s.findRole(clubID, roleName); ok {
		cu.RoleID = role.ID
	}
	s.members = append(s.members, cu)
	return s.withRole(cu)
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindMembership(_ context.Context, userID, clubID string) (models.ClubUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.ClubUser{}, s.failWith
	}
	for _, cu := range s.members {
		if cu.UserID == userID && strings.EqualFold(cu.ClubID, clubID) {
			return s.withRole(cu), nil
		}
	}
	return models.ClubUser{}, storage.ErrNotFound
}

func (s *Store) FindFirstMembership(_ context.Context, userID string) (models.ClubUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.ClubUser{}, s.failWith
	}
	for _, cu := range s.members {
		if cu.UserID == userID {
			return s.withRole(cu), nil
		}
	}
	return models.ClubUser{}, storage.ErrNotFound
}

func (s *Store) ListMemberships(_ context.Context, userID string) ([]models.ClubMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []models.ClubMembership
	for _, cu := range s.members {
		if cu.UserID != userID {
			continue
		}
		role := s.withRole(cu).Role
		if role == "" {
			role = models.RoleMember
		}
		out = append(out, models.ClubMembership{ClubID: cu.ClubID, ClubName: s.clubs[cu.ClubID].Name, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubName < out[j].ClubName })
	return out, nil
}

func (s *Store) GrantRole(_ context.Context, userID, clubID, roleName string) (models.ClubUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.ClubUser{}, s.failWith
	}
	role, ok := s.findRole(clubID, roleName)
	if !ok {
		return models.ClubUser{}, storage.ErrNotFound
	}
	for _, cu := range s.members {
		if cu.UserID == userID && cu.ClubID == clubID {
			return models.ClubUser{}, storage.ErrAlreadyExists
		}
	}
	cu := models.ClubUser{ID: uuid.NewString(), UserID: userID, ClubID: clubID, RoleID: role.ID, CreatedAt: s.now()}
	s.members = append(s.members, cu)
	return s.withRole(cu), nil
}

func (s *Store) CreateClub(_ context.Context, name, ownerID string, trialEndsAt time.Time) (models.Club, error) {
	if err := s.err(); err != nil {
		return models.Club{}, err
	}
	club := s.AddClub(name, &trialEndsAt)
	s.AddMembership(ownerID, club.ID, models.RoleAdmin)
	return club, nil
}

func (s *Store) GetClub(_ context.Context, clubID string) (models.Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.Club{}, s.failWith
	}
	club, ok := s.clubs[clubID]
	if !ok {
		return models.Club{}, storage.ErrNotFound
	}
	return club, nil
}

func (s *Store) TrialEndsAt(ctx context.Context, clubID string) (*time.Time, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	return club.TrialEndsAt, nil
}

func (s *Store) SetTrialEndsAt(_ context.Context, clubID string, endsAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	club, ok := s.clubs[clubID]
	if !ok {
		return storage.ErrNotFound
	}
	club.TrialEndsAt = &endsAt
	s.clubs[clubID] = club
	return nil
}

func (s *Store) ListRecords(_ context.Context, clubID, section string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []models.Record{}
	for _, rec := range s.records {
		if rec.ClubID == clubID && rec.Section == section {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetRecord(_ context.Context, clubID, section, id string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.Record{}, s.failWith
	}
	rec, ok := s.records[id]
	if !ok || rec.ClubID != clubID || rec.Section != section {
		return models.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) CreateRecord(_ context.Context, record models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Record{}, s.failWith
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = s.now()
	record.UpdatedAt = record.CreatedAt
	s.records[record.ID] = record
	return record, nil
}

func (s *Store) UpdateRecord(_ context.Context, record models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Record{}, s.failWith
	}
	existing, ok := s.records[record.ID]
	if !ok || existing.ClubID != record.ClubID || existing.Section != record.Section {
		return models.Record{}, storage.ErrNotFound
	}
	existing.Data = record.Data
	existing.UpdatedAt = s.now()
	s.records[record.ID] = existing
	return existing, nil
}

func (s *Store) DeleteRecord(_ context.Context, clubID, section, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	rec, ok := s.records[id]
	if !ok || rec.ClubID != clubID || rec.Section != section {
		return storage.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) CreateInvite(_ context.Context, invite models.Invite) (models.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Invite{}, s.failWith
	}
	role, ok := s.findRole(invite.ClubID, invite.Role)
	if !ok {
		return models.Invite{}, storage.ErrNotFound
	}
	invite.ID = uuid.NewString()
	invite.Token = uuid.NewString()
	invite.RoleID = role.ID
	invite.Accepted = false
	invite.CreatedAt = s.now()
	s.invites[invite.Token] = invite
	return invite, nil
}

func (s *Store) AcceptInvite(_ context.Context, token string, user models.Identity, now time.Time) (models.ClubUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.ClubUser{}, s.failWith
	}
	invite, ok := s.invites[token]
	switch {
	case !ok:
		return models.ClubUser{}, storage.ErrNotFound
	case invite.Accepted:
		return models.ClubUser{}, storage.ErrInviteUsed
	case !now.Before(invite.ExpiresAt):
		return models.ClubUser{}, storage.ErrInviteExpired
	case !strings.EqualFold(invite.Email, user.Email):
		return models.ClubUser{}, storage.ErrInviteRecipient
	}
	for _, cu := range s.members {
		if cu.UserID == user.ID && cu.ClubID == invite.ClubID {
			return models.ClubUser{}, storage.ErrAlreadyExists
		}
	}
	cu := models.ClubUser{ID: uuid.NewString(), UserID: user.ID, ClubID: invite.ClubID, RoleID: invite.RoleID, CreatedAt: s.now()}
	s.members = append(s.members, cu)
	invite.Accepted = true
	s.invites[token] = invite
	return s.withRole(cu), nil
}

func (s *Store) err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failWith
}

func (s *Store) findRole(clubID, name string) (models.Role, bool) {
	for _, role := range s.roles {
		if role.ClubID == clubID && role.Name == name {
			return role, true
		}
	}
	return models.Role{}, false
}

func (s *Store) withRole(cu models.ClubUser) models.ClubUser {
	if role, ok := s.roles[cu.RoleID]; ok {
		cu.Role = role.Name
	}
	return cu
}

// Close is a no-op so the store can stand in for the Postgres store.
func (s *Store) Close() {}
