// Package api defines one typed contract per backend endpoint. Each method
// issues its request through the gateway and decodes that endpoint's
// specific envelope, so callers never see the wrapper shapes.
//
// The envelopes are inconsistent by backend design and must be preserved:
// user and repository endpoints return bare objects/arrays, activities,
// projects and tasks wrap in {data, status}, and the single-project
// endpoint returns {project, progress, panelists}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jcarandang/captrack/internal/models"
)

const (
	pathUser       = "/api/user"
	pathActivities = "/api/activities"
	pathGroups     = "/api/groups"
	pathProjects   = "/api/projects"
	pathTasks      = "/api/tasks"
	pathRepository = "/api/repository"
)

// Doer is the gateway surface the client needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error)
}

// Client exposes the backend's resource endpoints as typed methods.
type Client struct {
	gw Doer
}

// New returns a Client calling through gw.
func New(gw Doer) *Client {
	return &Client{gw: gw}
}

// dataEnvelope is the {data, status} wrapper several endpoints use.
type dataEnvelope[T any] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
}

// get issues a GET and decodes the body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.gw.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// send issues a request with a JSON body and decodes the response into out
// when out is non-nil.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.gw.Do(ctx, method, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// CurrentUser fetches the signed-in user. Bare object, no wrapper.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, pathUser, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the signed-in user and returns the saved record.
// Bare object, no wrapper.
func (c *Client) UpdateProfile(ctx context.Context, u *models.User) (*models.User, error) {
	var saved models.User
	if err := c.send(ctx, http.MethodPut, pathUser, u, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListActivities fetches all activities. Wrapped in {data, status}.
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var env dataEnvelope[[]models.Activity]
	if err := c.get(ctx, pathActivities, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetActivity fetches one activity. Wrapped in {data, status}.
func (c *Client) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	var env dataEnvelope[models.Activity]
	if err := c.get(ctx, pathActivities+"/"+id, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateActivity creates an activity. Wrapped in {data, status}.
func (c *Client) CreateActivity(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	var env dataEnvelope[models.Activity]
	if err := c.send(ctx, http.MethodPost, pathActivities, a, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListGroups fetches all groups. Bare array, no wrapper.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.get(ctx, pathGroups, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListProjects fetches all projects. Wrapped in {data, status}.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var env dataEnvelope[[]models.Project]
	if err := c.get(ctx, pathProjects, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetProject fetches one project with its progress and panelists. This
// endpoint uses the {project, progress, panelists} triple wrapper.
func (c *Client) GetProject(ctx context.Context, id string) (*models.ProjectDetail, error) {
	var detail models.ProjectDetail
	if err := c.get(ctx, pathProjects+"/"+id, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateProject creates a project. Wrapped in {data, status}.
func (c *Client) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var env dataEnvelope[models.Project]
	if err := c.send(ctx, http.MethodPost, pathProjects, p, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateProject updates a project. Wrapped in {data, status}.
func (c *Client) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var env dataEnvelope[models.Project]
	if err := c.send(ctx, http.MethodPut, pathProjects+"/"+p.ID, p, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListTasks fetches all tasks visible to the user. Wrapped in {data, status}.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var env dataEnvelope[[]models.Task]
	if err := c.get(ctx, pathTasks, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateTask creates a task. Wrapped in {data, status}.
func (c *Client) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	var env dataEnvelope[models.Task]
	if err := c.send(ctx, http.MethodPost, pathTasks, t, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateTask updates a task. Wrapped in {data, status}.
func (c *Client) UpdateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	var env dataEnvelope[models.Task]
	if err := c.send(ctx, http.MethodPut, pathTasks+"/"+t.ID, t, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListRepository fetches the archive of completed works. Bare array.
func (c *Client) ListRepository(ctx context.Context) ([]models.RepositoryItem, error) {
	var items []models.RepositoryItem
	if err := c.get(ctx, pathRepository, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRepositoryItem fetches one archived work. Bare object.
func (c *Client) GetRepositoryItem(ctx context.Context, id string) (*models.RepositoryItem, error) {
	var item models.RepositoryItem
	if err := c.get(ctx, pathRepository+"/"+id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
