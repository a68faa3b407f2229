package session_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcarandang/captrack/internal/apperror"
	"github.com/jcarandang/captrack/internal/client/api"
	"github.com/jcarandang/captrack/internal/client/credstore"
	"github.com/jcarandang/captrack/internal/client/gateway"
	"github.com/jcarandang/captrack/internal/client/session"
	"github.com/jcarandang/captrack/internal/devserver"
	"github.com/jcarandang/captrack/internal/models"
)

// newStack wires the full client against an in-process dev server, exactly
// as cmd/client does.
func newStack(t *testing.T) (*session.Manager, *api.Client, *credstore.MemStore) {
	t.Helper()

	store := devserver.NewStore()
	store.Seed()
	h := &devserver.Handler{Store: store, Secret: []byte("integration-secret")}
	srv := httptest.NewServer(devserver.NewRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)

	creds := credstore.NewMemStore()
	sess := session.New(creds, srv.Client(), srv.URL, zap.NewNop())
	gw := gateway.New(srv.URL, srv.Client(), sess, zap.NewNop())
	gw.OnUnauthorized(sess.HandleUnauthorized)
	sess.SetGateway(gw)
	return sess, api.New(gw), creds
}

func TestClientAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	sess, client, creds := newStack(t)

	require.NoError(t, sess.Restore(ctx))
	require.False(t, sess.IsAuthenticated())

	// Wrong password surfaces the backend's validation message.
	err := sess.Login(ctx, "ana@school.edu", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")

	require.NoError(t, sess.Login(ctx, "ana@school.edu", "secret123"))
	require.True(t, sess.IsAuthenticated())

	u := sess.CurrentUser()
	require.NotNil(t, u)
	assert.Equal(t, models.RoleStudent, models.NormalizeRole(u))

	activities, err := client.ListActivities(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, activities)

	groups, err := client.ListGroups(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, groups)

	projects, err := client.ListProjects(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, projects)

	detail, err := client.GetProject(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.Equal(t, projects[0].Title, detail.Project.Title)
	assert.NotEmpty(t, detail.Panelists)

	created, err := client.CreateTask(ctx, &models.Task{Title: "Integration task", ProjectID: projects[0].ID})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Done = true
	updated, err := client.UpdateTask(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.Done)

	repo, err := client.ListRepository(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, repo)
	item, err := client.GetRepositoryItem(ctx, repo[0].ID)
	require.NoError(t, err)
	assert.Equal(t, repo[0].Title, item.Title)

	sess.Logout(ctx)
	assert.False(t, sess.IsAuthenticated())
	_, err = creds.Get(ctx, credstore.KeyToken)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStaleTokenGets401AndTearsDown(t *testing.T) {
	ctx := context.Background()
	sess, client, creds := newStack(t)

	// A token the server never issued: the next request must observe 401,
	// reject with a session-expired error and clear local state.
	require.NoError(t, creds.Set(ctx, credstore.KeyToken, "forged-token"))
	require.NoError(t, sess.Restore(ctx))
	require.False(t, sess.IsAuthenticated(), "401 on the restore user-fetch should already tear the session down")

	require.NoError(t, creds.Set(ctx, credstore.KeyToken, "forged-token"))
	_, err := client.ListTasks(ctx)
	require.ErrorIs(t, err, apperror.ErrSessionExpired)
	_, err = creds.Get(ctx, credstore.KeyToken)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
