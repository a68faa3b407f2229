// Package devserver implements an in-memory stand-in for the capstone
// backend, preserving each endpoint's documented envelope shape so the
// client can be run and tested without the real service. It is a fixture,
// not a backend.
package devserver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jcarandang/captrack/internal/models"
)

// account pairs a user record with its plaintext password. Fixture only.
type account struct {
	password string
	user     models.User
}

// Store holds all dev server data in memory.
type Store struct {
	mu        sync.Mutex
	accounts  map[string]*account // keyed by email
	activity  []models.Activity
	groups    []models.Group
	projects  []models.Project
	progress  map[string]float64
	panelists map[string][]string
	tasks     []models.Task
	repo      []models.RepositoryItem
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*account),
		progress:  make(map[string]float64),
		panelists: make(map[string][]string),
	}
}

// Seed fills the store with demo data, including users whose role
// membership is encoded through each of the backend's four role fields.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts["ana@school.edu"] = &account{
		password: "secret123",
		user: models.User{
			ID: 1, Name: "Ana Reyes", Email: "ana@school.edu",
			Course: "BSIT", Roles: []string{"Student"},
		},
	}
	s.accounts["ben@school.edu"] = &account{
		password: "secret123",
		user: models.User{
			ID: 2, Name: "Ben Cruz", Email: "ben@school.edu",
			UserRoles: []string{"ADVISER"},
		},
	}
	s.accounts["carla@school.edu"] = &account{
		password: "secret123",
		user: models.User{
			ID: 3, Name: "Carla Santos", Email: "carla@school.edu",
			PrimaryRole: "panelist",
		},
	}
	s.accounts["dino@school.edu"] = &account{
		password: "secret123",
		user: models.User{
			ID: 4, Name: "Dino Lim", Email: "dino@school.edu",
			LegacyRole: "Coordinator",
		},
	}

	s.activity = []models.Activity{
		{ID: uuid.NewString(), Title: "Title Defense", Date: "2026-09-15", Location: "Room 301"},
		{ID: uuid.NewString(), Title: "Capstone Orientation", Date: "2026-09-01", Location: "AVR"},
		{ID: uuid.NewString(), Title: "Final Defense", Date: "2026-12-10", Location: "Room 301"},
	}

	groupID := uuid.NewString()
	s.groups = []models.Group{
		{ID: groupID, Name: "Team Aurora", Members: []string{"Ana Reyes", "Ben Cruz"}, Adviser: "Ben Cruz"},
	}

	projectID := uuid.NewString()
	s.projects = []models.Project{
		{ID: projectID, Title: "Smart Attendance System", GroupID: groupID, Status: "ongoing"},
	}
	s.progress[projectID] = 42.5
	s.panelists[projectID] = []string{"Carla Santos"}

	s.tasks = []models.Task{
		{ID: uuid.NewString(), ProjectID: projectID, Title: "Write chapter 1", Done: true},
		{ID: uuid.NewString(), ProjectID: projectID, Title: "Build prototype", Done: false},
	}

	s.repo = []models.RepositoryItem{
		{ID: uuid.NewString(), Title: "IoT Greenhouse Monitor", Authors: []string{"Past Team A"}, Year: 2024},
		{ID: uuid.NewString(), Title: "Library Kiosk", Authors: []string{"Past Team B"}, Year: 2025},
	}
}

// Authenticate checks credentials and returns the matching user.
func (s *Store) Authenticate(email, password string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok || acc.password != password {
		return models.User{}, false
	}
	return acc.user, true
}

// UserByEmail returns the user record for email.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

// UpdateUser replaces the mutable profile fields of the user with the
// given email and returns the saved record.
func (s *Store) UpdateUser(email string, in models.User) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok {
		return models.User{}, false
	}
	if in.Name != "" {
		acc.user.Name = in.Name
	}
	if in.Course != "" {
		acc.user.Course = in.Course
	}
	if in.AvatarURL != "" {
		acc.user.AvatarURL = in.AvatarURL
	}
	return acc.user, true
}

// Activities returns all activities.
func (s *Store) Activities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Activity, len(s.activity))
	copy(out, s.activity)
	return out
}

// ActivityByID returns one activity.
func (s *Store) ActivityByID(id string) (models.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.activity {
		if a.ID == id {
			return a, true
		}
	}
	return models.Activity{}, false
}

// AddActivity stores a new activity, assigning it an ID.
func (s *Store) AddActivity(a models.Activity) models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	s.activity = append(s.activity, a)
	return a
}

// Groups returns all groups.
func (s *Store) Groups() []models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// Projects returns all projects.
func (s *Store) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// ProjectDetail returns one project with its progress and panelists.
func (s *Store) ProjectDetail(id string) (models.ProjectDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return models.ProjectDetail{
				Project:   p,
				Progress:  s.progress[id],
				Panelists: s.panelists[id],
			}, true
		}
	}
	return models.ProjectDetail{}, false
}

// AddProject stores a new project, assigning it an ID.
func (s *Store) AddProject(p models.Project) models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	s.projects = append(s.projects, p)
	return p
}

// UpdateProject replaces the project with the same ID.
func (s *Store) UpdateProject(p models.Project) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return p, true
		}
	}
	return models.Project{}, false
}

// Tasks returns all tasks.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// AddTask stores a new task, assigning it an ID.
func (s *Store) AddTask(t models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.tasks = append(s.tasks, t)
	return t
}

// UpdateTask replaces the task with the same ID.
func (s *Store) UpdateTask(t models.Task) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return t, true
		}
	}
	return models.Task{}, false
}

// Repository returns all archived works.
func (s *Store) Repository() []models.RepositoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RepositoryItem, len(s.repo))
	copy(out, s.repo)
	return out
}

// RepositoryItemByID returns one archived work.
func (s *Store) RepositoryItemByID(id string) (models.RepositoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.repo {
		if item.ID == id {
			return item, true
		}
	}
	return models.RepositoryItem{}, false
}
