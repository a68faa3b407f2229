package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jcarandang/captrack/internal/middleware"
	"github.com/jcarandang/captrack/internal/models"
)

// Handler serves the capstone API surface from an in-memory Store.
type Handler struct {
	Store  *Store
	Secret []byte
}

// dataEnvelope is the {data, status} wrapper used by the activities,
// projects and tasks endpoints.
type dataEnvelope struct {
	Data   any    `json:"data"`
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataEnvelope{Data: v, Status: "success"})
}

// writeValidation writes the 422 envelope with a field-keyed errors map.
func writeValidation(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors":  fields,
	})
}

// loginRequest is the login endpoint's JSON payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. Empty fields and bad credentials both use
// the 422 validation envelope, matching the production backend.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = append(fields["email"], "The email field is required.")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "The password field is required.")
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	user, ok := h.Store.Authenticate(req.Email, req.Password)
	if !ok {
		writeValidation(w, map[string][]string{
			"email": {"These credentials do not match our records."},
		})
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/logout. Tokens are stateless here, so there is
// nothing to revoke; the client ignores the body either way.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CurrentUser handles GET /api/user. Bare user object, no wrapper.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())
	user, ok := h.Store.UserByEmail(email)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user. Bare user object, no wrapper.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())

	var in models.User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, ok := h.Store.UpdateUser(email, in)
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListActivities handles GET /api/activities. {data, status} wrapper.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.Store.Activities())
}

// GetActivity handles GET /api/activities/{id}. {data, status} wrapper.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := h.Store.ActivityByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "activity not found"})
		return
	}
	writeData(w, http.StatusOK, a)
}

// CreateActivity handles POST /api/activities. {data, status} wrapper.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var in models.Activity
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if in.Title == "" {
		writeValidation(w, map[string][]string{"title": {"The title field is required."}})
		return
	}
	writeData(w, http.StatusCreated, h.Store.AddActivity(in))
}

// ListGroups handles GET /api/groups. Bare array, no wrapper.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Groups())
}

// ListProjects handles GET /api/projects. {data, status} wrapper.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.Store.Projects())
}

// GetProject handles GET /api/projects/{id} with the endpoint's
// {project, progress, panelists} triple wrapper.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.Store.ProjectDetail(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "project not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CreateProject handles POST /api/projects. {data, status} wrapper.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in models.Project
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if in.Title == "" {
		writeValidation(w, map[string][]string{"title": {"The title field is required."}})
		return
	}
	writeData(w, http.StatusCreated, h.Store.AddProject(in))
}

// UpdateProject handles PUT /api/projects/{id}. {data, status} wrapper.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in models.Project
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	in.ID = chi.URLParam(r, "id")
	p, ok := h.Store.UpdateProject(in)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "project not found"})
		return
	}
	writeData(w, http.StatusOK, p)
}

// ListTasks handles GET /api/tasks. {data, status} wrapper.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.Store.Tasks())
}

// CreateTask handles POST /api/tasks. {data, status} wrapper.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.Task
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if in.Title == "" {
		writeValidation(w, map[string][]string{"title": {"The title field is required."}})
		return
	}
	writeData(w, http.StatusCreated, h.Store.AddTask(in))
}

// UpdateTask handles PUT /api/tasks/{id}. {data, status} wrapper.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var in models.Task
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	in.ID = chi.URLParam(r, "id")
	t, ok := h.Store.UpdateTask(in)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	writeData(w, http.StatusOK, t)
}

// ListRepository handles GET /api/repository. Bare array, no wrapper.
func (h *Handler) ListRepository(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Repository())
}

// GetRepositoryItem handles GET /api/repository/{id}. Bare object.
func (h *Handler) GetRepositoryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Store.RepositoryItemByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "repository item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}
