// Package models defines the data structures exchanged with the capstone
// management backend: the user record, its normalized role, and the
// per-screen resource types.
package models

import "strings"

// User represents the current-user record returned by the backend.
//
// The backend reports role membership through four differently named,
// possibly absent fields (Roles, UserRoles, PrimaryRole and the legacy
// Role). Callers must not inspect them directly; use NormalizeRole once
// at the decode boundary and work with the canonical Role value.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Name is the user's display name.
	Name string `json:"name"`
	// Email is the login email address.
	Email string `json:"email"`
	// Course is the academic program the user belongs to, if any.
	Course string `json:"course,omitempty"`
	// AvatarURL points at the user's profile image, if set.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Roles is the modern role list field.
	Roles []string `json:"roles,omitempty"`
	// UserRoles is an alternate role list used by some endpoints.
	UserRoles []string `json:"user_roles,omitempty"`
	// PrimaryRole is a single-valued role field used by newer endpoints.
	PrimaryRole string `json:"primary_role,omitempty"`
	// LegacyRole is the oldest single-valued role field.
	LegacyRole string `json:"role,omitempty"`
}

// Role is the canonical role of a user within the capstone system.
type Role string

const (
	// RoleStudent marks a capstone student.
	RoleStudent Role = "student"
	// RoleAdviser marks a project adviser.
	RoleAdviser Role = "adviser"
	// RolePanelist marks a defense panelist.
	RolePanelist Role = "panelist"
	// RoleCoordinator marks the capstone coordinator.
	RoleCoordinator Role = "coordinator"
	// RoleUnknown is returned when no role field carries a known value.
	RoleUnknown Role = ""
)

// knownRoles maps lower-cased backend role strings to canonical roles.
var knownRoles = map[string]Role{
	"student":     RoleStudent,
	"adviser":     RoleAdviser,
	"advisor":     RoleAdviser,
	"panelist":    RolePanelist,
	"panel":       RolePanelist,
	"coordinator": RoleCoordinator,
}

// NormalizeRole inspects all four role fields, case-insensitively, and
// returns the first recognized role. Probe order is Roles, UserRoles,
// PrimaryRole, LegacyRole. This is the single place in the client that
// knows about the backend's inconsistent role encoding.
func NormalizeRole(u *User) Role {
	if u == nil {
		return RoleUnknown
	}
	for _, list := range [][]string{u.Roles, u.UserRoles} {
		for _, raw := range list {
			if r, ok := knownRoles[strings.ToLower(strings.TrimSpace(raw))]; ok {
				return r
			}
		}
	}
	for _, raw := range []string{u.PrimaryRole, u.LegacyRole} {
		if r, ok := knownRoles[strings.ToLower(strings.TrimSpace(raw))]; ok {
			return r
		}
	}
	return RoleUnknown
}

// IsStudent reports whether the user holds the student role under any of
// the backend's role fields.
func (u *User) IsStudent() bool {
	return NormalizeRole(u) == RoleStudent
}

// Activity is an announcement or scheduled event shown by the activities
// command. Fetched fresh per command, never persisted.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location,omitempty"`
}

// Group is a capstone student group.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Adviser string   `json:"adviser,omitempty"`
}

// Project is a capstone project record.
type Project struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	GroupID  string `json:"group_id"`
	Status   string `json:"status"`
	Abstract string `json:"abstract,omitempty"`
}

// ProjectDetail is the composite payload returned by the single-project
// endpoint: the project itself plus its progress percentage and assigned
// panelists. This triple wrapper is specific to that endpoint.
type ProjectDetail struct {
	Project   Project  `json:"project"`
	Progress  float64  `json:"progress"`
	Panelists []string `json:"panelists"`
}

// Task is a unit of work within a project.
type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Title     string `json:"title"`
	Details   string `json:"details,omitempty"`
	Done      bool   `json:"done"`
	DueDate   string `json:"due_date,omitempty"`
}

// RepositoryItem is a completed capstone work archived in the repository.
type RepositoryItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Abstract string   `json:"abstract,omitempty"`
	FileURL  string   `json:"file_url,omitempty"`
}
