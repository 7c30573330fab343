package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/clubcore/internal/models"
)

func TestHasAccess(t *testing.T) {
	table := DefaultTable()
	admin := &models.ClubUser{Role: "admin"}
	member := &models.ClubUser{Role: "member"}

	tests := []struct {
		name     string
		user     *models.ClubUser
		table    Table
		section  string
		action   string
		expected bool
	}{
		{"admin edits events", admin, table, "events", "edit", true},
		{"member views events", member, table, "events", "view", true},
		{"member cannot edit events", member, table, "events", "edit", false},
		{"member cannot delete vendors", member, table, "vendors", "delete", false},
		{"admin deletes vendors", admin, table, "vendors", "delete", true},
		{"empty action defaults to view", member, table, "news", "", true},
		{"member cannot see ads manager", member, table, "ads-manager", "", false},
		{"role compares case-insensitively", &models.ClubUser{Role: "ADMIN"}, table, "finance", "add", true},
		{"allow-list compares case-insensitively", member, Table{"x": {"view": {"Member"}}}, "x", "view", true},
		{"nil club user", nil, table, "events", "view", false},
		{"empty role", &models.ClubUser{}, table, "events", "view", false},
		{"nil table", admin, nil, "events", "view", false},
		{"missing section", admin, table, "payroll", "view", false},
		{"missing action", admin, table, "calendar", "edit", false},
		{"nil allow-list", admin, Table{"events": {"view": nil}}, "events", "view", false},
		{"empty allow-list", admin, Table{"events": {"view": {}}}, "events", "view", false},
		{"unknown role", &models.ClubUser{Role: "guest"}, table, "events", "view", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasAccess(tt.user, tt.table, tt.section, tt.action))
		})
	}
}

// Every section/action pair, populated or not, follows the allow-list exactly.
func TestHasAccessMatchesTableForEveryPair(t *testing.T) {
	table := DefaultTable()
	actions := []string{"view", "edit", "add", "delete", "publish"}
	roles := []string{"admin", "member", "guest"}

	for _, section := range append(table.Sections(), "unknown") {
		for _, action := range actions {
			for _, role := range roles {
				expected := false
				for _, allowed := range table[section][action] {
					if allowed == role {
						expected = true
					}
				}
				got := HasAccess(&models.ClubUser{Role: role}, table, section, action)
				assert.Equal(t, expected, got, "%s/%s as %s", section, action, role)
			}
		}
	}
}
