package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcarandang/captrack/internal/models"
)

// fakeDoer records the request and answers with a canned body.
type fakeDoer struct {
	method string
	path   string
	body   []byte

	status   int
	response string
}

func (f *fakeDoer) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	f.method = method
	f.path = path
	if body != nil {
		f.body, _ = io.ReadAll(body)
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(f.response)),
	}, nil
}

func TestCurrentUser_BareObject(t *testing.T) {
	gw := &fakeDoer{response: `{"id":3,"name":"Carla","email":"carla@school.edu","primary_role":"panelist"}`}
	c := New(gw)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gw.method)
	assert.Equal(t, "/api/user", gw.path)
	assert.Equal(t, "Carla", u.Name)
	assert.Equal(t, "panelist", u.PrimaryRole)
}

func TestListActivities_DataEnvelope(t *testing.T) {
	gw := &fakeDoer{response: `{"data":[{"id":"a1","title":"Orientation"},{"id":"a2","title":"Defense"}],"status":"success"}`}
	c := New(gw)

	items, err := c.ListActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/activities", gw.path)
	require.Len(t, items, 2)
	assert.Equal(t, "Orientation", items[0].Title)
}

func TestListGroups_BareArray(t *testing.T) {
	gw := &fakeDoer{response: `[{"id":"g1","name":"Team Aurora","members":["Ana"]}]`}
	c := New(gw)

	groups, err := c.ListGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/groups", gw.path)
	require.Len(t, groups, 1)
	assert.Equal(t, "Team Aurora", groups[0].Name)
}

func TestGetProject_TripleEnvelope(t *testing.T) {
	gw := &fakeDoer{response: `{"project":{"id":"p1","title":"Smart Attendance"},"progress":42.5,"panelists":["Carla"]}`}
	c := New(gw)

	detail, err := c.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "/api/projects/p1", gw.path)
	assert.Equal(t, "Smart Attendance", detail.Project.Title)
	assert.Equal(t, 42.5, detail.Progress)
	assert.Equal(t, []string{"Carla"}, detail.Panelists)
}

func TestCreateTask_SendsBodyAndUnwraps(t *testing.T) {
	gw := &fakeDoer{
		status:   http.StatusCreated,
		response: `{"data":{"id":"t9","title":"Write chapter 2"},"status":"success"}`,
	}
	c := New(gw)

	created, err := c.CreateTask(context.Background(), &models.Task{Title: "Write chapter 2"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gw.method)
	assert.Equal(t, "/api/tasks", gw.path)
	assert.Equal(t, "t9", created.ID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(gw.body, &sent))
	assert.Equal(t, "Write chapter 2", sent["title"])
}

func TestUpdateTask_PutsToItemPath(t *testing.T) {
	gw := &fakeDoer{response: `{"data":{"id":"t1","title":"x","done":true},"status":"success"}`}
	c := New(gw)

	task := models.Task{Title: "x", ID: "t1", Done: true}
	updated, err := c.UpdateTask(context.Background(), &task)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gw.method)
	assert.Equal(t, "/api/tasks/t1", gw.path)
	assert.True(t, updated.Done)
}

func TestListRepository_BareArray(t *testing.T) {
	gw := &fakeDoer{response: `[{"id":"r1","title":"IoT Greenhouse Monitor","year":2024}]`}
	c := New(gw)

	items, err := c.ListRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/repository", gw.path)
	require.Len(t, items, 1)
	assert.Equal(t, 2024, items[0].Year)
}

func TestGet_DecodeErrorNamesPath(t *testing.T) {
	gw := &fakeDoer{response: `not-json`}
	c := New(gw)

	_, err := c.ListGroups(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/groups")
}
