package access

import (
	"strings"

	"github.com/hongminglow/clubcore/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultAction is used when HasAccess is called with an empty action.
const DefaultAction = "view"

// HasAccess reports whether clubUser's role may perform action on section.
// Anything missing (membership, role, section, action, allow-list) denies.
// Role names compare case-insensitively.
func HasAccess(clubUser *models.ClubUser, permissions Table, section, action string) bool {
	if action == "" {
		action = DefaultAction
	}
	fields := logrus.Fields{"section": section, "action": action}

	if clubUser == nil {
		logrus.WithFields(fields).Debug("hasAccess: club user missing")
		return false
	}
	if clubUser.Role == "" {
		logrus.WithFields(fields).Debug("hasAccess: role missing")
		return false
	}
	allowed, ok := permissions[section][action]
	if !ok || len(allowed) == 0 {
		logrus.WithFields(fields).Debug("hasAccess: no permission entry")
		return false
	}

	for _, role := range allowed {
		if strings.EqualFold(role, clubUser.Role) {
			return true
		}
	}
	logrus.WithFields(fields).WithField("role", clubUser.Role).Debug("hasAccess: denied")
	return false
}
