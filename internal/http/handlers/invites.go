package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/http/respond"
	"github.com/hongminglow/clubcore/internal/middleware"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/models/dto"
	"github.com/hongminglow/clubcore/internal/storage"
)

// InvitesHandler lets club admins invite an email address and lets the
// invitee redeem the token once signed in.
type InvitesHandler struct {
	invites  storage.InviteStore
	sessions access.Sessions
	ttl      time.Duration
	now      func() time.Time
	log      *logrus.Logger
}

// NewInvitesHandler constructs the handler. Invites expire ttl after creation.
func NewInvitesHandler(invites storage.InviteStore, sessions access.Sessions, ttl time.Duration, log *logrus.Logger) *InvitesHandler {
	return &InvitesHandler{
		invites:  invites,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Register attaches the invite routes. Call it before the records routes so
// /api/{clubId}/invites is not taken for a section.
func (h *InvitesHandler) Register(r *mux.Router, guard *middleware.ClubAuth) {
	r.HandleFunc("/api/invites/{token}/accept", h.handleAccept).Methods(http.MethodPost)
	r.Handle("/api/{clubId}/invites",
		guard.API("members", "add")(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
}

func (h *InvitesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	var req dto.CreateInviteRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		respond.Error(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleMember
	}

	invite, err := h.invites.CreateInvite(r.Context(), models.Invite{
		ClubID:    props.ClubID,
		Email:     email,
		Role:      role,
		ExpiresAt: h.now().Add(h.ttl),
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusBadRequest, "Club has no "+role+" role")
		return
	case err != nil:
		h.log.WithError(err).WithField("club_id", props.ClubID).Error("create invite failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to create invite")
		return
	}
	h.log.WithFields(logrus.Fields{
		"club_id":    props.ClubID,
		"invite_id":  invite.ID,
		"role":       invite.Role,
		"invited_by": props.User.ID,
	}).Info("invite created")
	respond.JSON(w, http.StatusCreated, invite)
}

func (h *InvitesHandler) handleAccept(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.Session(w, r)
	if id == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cu, err := h.invites.AcceptInvite(r.Context(), mux.Vars(r)["token"], *id, h.now())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Invite not found")
		return
	case errors.Is(err, storage.ErrInviteUsed):
		respond.Error(w, http.StatusGone, "Invite already accepted")
		return
	case errors.Is(err, storage.ErrInviteExpired):
		respond.Error(w, http.StatusGone, "Invite has expired")
		return
	case errors.Is(err, storage.ErrInviteRecipient):
		respond.Error(w, http.StatusForbidden, "Invite was issued to another email")
		return
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "User is already a member")
		return
	case err != nil:
		h.log.WithError(err).WithField("user_id", id.ID).Error("accept invite failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to accept invite")
		return
	}
	h.log.WithFields(logrus.Fields{
		"club_id": cu.ClubID,
		"user_id": id.ID,
		"role":    cu.Role,
	}).Info("invite accepted")
	respond.JSON(w, http.StatusCreated, cu)
}
