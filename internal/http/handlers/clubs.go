package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/http/respond"
	"github.com/hongminglow/clubcore/internal/middleware"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/models/dto"
	"github.com/hongminglow/clubcore/internal/storage"
)

// ClubsHandler serves club creation, the select-club list and the per-club
// membership, checkout, trial and permission endpoints.
type ClubsHandler struct {
	clubs       storage.ClubStore
	members     storage.MembershipStore
	sessions    access.Sessions
	trialPeriod time.Duration
	now         func() time.Time
	log         *logrus.Logger
}

// NewClubsHandler constructs the handler.
func NewClubsHandler(clubs storage.ClubStore, members storage.MembershipStore, sessions access.Sessions, trialPeriod time.Duration, log *logrus.Logger) *ClubsHandler {
	return &ClubsHandler{
		clubs:       clubs,
		members:     members,
		sessions:    sessions,
		trialPeriod: trialPeriod,
		now:         time.Now,
		log:         log,
	}
}

// Register attaches the club routes. Routes under a club id go through guard.
func (h *ClubsHandler) Register(r *mux.Router, guard *middleware.ClubAuth) {
	r.HandleFunc("/api/clubs", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/api/clubs", h.handleList).Methods(http.MethodGet)

	r.Handle("/api/{clubId}/members/access",
		guard.API("members", "add")(http.HandlerFunc(h.handleGrantAccess))).Methods(http.MethodPost)
	// The payment provider's success callback is trusted as-is; only club admins may post it.
	r.Handle("/api/{clubId}/checkout/success",
		guard.API("members", "edit")(http.HandlerFunc(h.handleCheckoutSuccess))).Methods(http.MethodPost)
	r.Handle("/api/{clubId}/trial",
		guard.Member()(http.HandlerFunc(h.handleTrial))).Methods(http.MethodGet)
	r.Handle("/api/{clubId}/permissions",
		guard.Member()(http.HandlerFunc(h.handlePermissions))).Methods(http.MethodGet)
}

func (h *ClubsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Session(w, r)
	if id == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req dto.CreateClubRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Error(w, http.StatusBadRequest, "Club name is required")
		return
	}

	club, err := h.clubs.CreateClub(r.Context(), name, id.ID, h.now().Add(h.trialPeriod))
	if err != nil {
		h.log.WithError(err).WithField("user_id", id.ID).Error("create club failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to create club")
		return
	}
	h.log.WithFields(logrus.Fields{"club_id": club.ID, "user_id": id.ID}).Info("club created")
	respond.JSON(w, http.StatusCreated, club)
}

func (h *ClubsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Session(w, r)
	if id == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	memberships, err := h.members.ListMemberships(r.Context(), id.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", id.ID).Error("list memberships failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to list clubs")
		return
	}
	if memberships == nil {
		memberships = []models.ClubMembership{}
	}
	respond.JSON(w, http.StatusOK, memberships)
}

func (h *ClubsHandler) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	var req dto.GrantAccessRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		respond.Error(w, http.StatusBadRequest, "A valid user_id is required")
		return
	}

	cu, err := h.members.GrantRole(r.Context(), req.UserID, props.ClubID, models.RoleMember)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "User is already a member")
		return
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusBadRequest, "Club has no member role")
		return
	case err != nil:
		h.log.WithError(err).WithField("club_id", props.ClubID).Error("grant access failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to grant access")
		return
	}
	h.log.WithFields(logrus.Fields{
		"club_id":    props.ClubID,
		"user_id":    req.UserID,
		"granted_by": props.User.ID,
	}).Info("member access granted")
	respond.JSON(w, http.StatusCreated, cu)
}

func (h *ClubsHandler) handleCheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	endsAt := h.now().AddDate(1, 0, 0)
	if err := h.clubs.SetTrialEndsAt(r.Context(), props.ClubID, endsAt); err != nil {
		h.log.WithError(err).WithField("club_id", props.ClubID).Error("extend subscription failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to update subscription")
		return
	}
	h.log.WithFields(logrus.Fields{"club_id": props.ClubID, "trial_ends_at": endsAt}).Info("subscription extended")
	respond.JSON(w, http.StatusOK, h.trialStatus(props.ClubID, &endsAt))
}

func (h *ClubsHandler) handleTrial(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	endsAt, err := h.clubs.TrialEndsAt(r.Context(), props.ClubID)
	if err != nil {
		h.log.WithError(err).WithField("club_id", props.ClubID).Error("read trial failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to read trial")
		return
	}
	respond.JSON(w, http.StatusOK, h.trialStatus(props.ClubID, endsAt))
}

func (h *ClubsHandler) handlePermissions(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	can := make(map[string]map[string]bool, len(props.Permissions))
	for section, actions := range props.Permissions {
		can[section] = make(map[string]bool, len(actions))
		for action := range actions {
			can[section][action] = access.HasAccess(&props.ClubUser, props.Permissions, section, action)
		}
	}
	respond.JSON(w, http.StatusOK, dto.PermissionsResponse{
		Role:        props.ClubUser.Role,
		Permissions: props.Permissions,
		Can:         can,
	})
}

func (h *ClubsHandler) trialStatus(clubID string, endsAt *time.Time) dto.TrialStatus {
	status := dto.TrialStatus{ClubID: clubID, TrialEndsAt: endsAt}
	if endsAt == nil {
		return status
	}
	left := endsAt.Sub(h.now())
	status.Active = left > 0
	if status.Active {
		status.DaysLeft = int(math.Ceil(left.Hours() / 24))
	}
	return status
}
