package todo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture starts the app over a store holding one task, like a fresh
// database with a single row.
type fixture struct {
	store *MemStore
	task  Task
	srv   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemStore()
	task := Task{Title: "Test task"}
	require.NoError(t, store.Create(context.Background(), &task))

	srv := httptest.NewServer(NewHandler(store, nil).Router(zerolog.Nop()))
	t.Cleanup(srv.Close)
	return &fixture{store: store, task: task, srv: srv}
}

func (f *fixture) url(path string) string {
	return f.srv.URL + path
}

func (f *fixture) taskPath(prefix string) string {
	return "/" + prefix + "/" + strconv.FormatInt(f.task.ID, 10) + "/"
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHandler_IndexListsTasks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.url("/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Test task")
}

func TestHandler_UpdatePageShowsTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.url(f.taskPath("update_task")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Test task")
}

func TestHandler_UpdatePostSavesTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url(f.taskPath("update_task")), url.Values{
		"title":    {"Updated task"},
		"complete": {"True"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "redirect is followed to the list")
	resp.Body.Close()

	got, err := f.store.Get(context.Background(), f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated task", got.Title)
	assert.True(t, got.Complete)
}

func TestHandler_DeletePageShowsConfirmation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.url(f.taskPath("delete_task")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Test task")
	assert.Contains(t, page, `class="delete-form"`)
}

func TestHandler_DeletePostRemovesTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url(f.taskPath("delete_task")), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, err = f.store.Get(context.Background(), f.task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTask_StringReturnsTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "My title", Task{Title: "My title"}.String())
}

func TestHandler_CreateAddsRow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url("/"), url.Values{"title": {"  Buy milk  "}})
	require.NoError(t, err)
	page := body(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, strings.Count(page, `class="item-row"`))
	assert.Contains(t, page, "<span>Buy milk</span>")
}

func TestHandler_CreateRejectsEmptyTitle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url("/"), url.Values{"title": {"   "}})
	require.NoError(t, err)
	page := body(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, page, "title is required")

	tasks, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestHandler_UpdateRejectsLongTitle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url(f.taskPath("update_task")), url.Values{"title": {strings.Repeat("x", MaxTitleLen+1)}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	got, err := f.store.Get(context.Background(), f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test task", got.Title)
}

func TestHandler_UnknownTaskIs404(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, path := range []string{"/update_task/999/", "/delete_task/999/", "/update_task/abc/"} {
		resp, err := http.Get(f.url(path))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestHandler_RedirectsAfterPost(t *testing.T) {
	t.Parallel()
	store := NewMemStore()
	h := NewHandler(store, nil).Router(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=Walk"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandler_MetricsCountMutations(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.PostForm(f.url("/"), url.Values{"title": {"one"}})
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = http.PostForm(f.url(f.taskPath("delete_task")), nil)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(f.url("/metrics"))
	require.NoError(t, err)
	page := body(t, resp)
	assert.Contains(t, page, "todo_tasks_created_total 1")
	assert.Contains(t, page, "todo_tasks_deleted_total 1")
	assert.Contains(t, page, "todo_tasks_updated_total 0")
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp, err := http.Get(f.url("/healthz"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body(t, resp))
}

func TestFormBool(t *testing.T) {
	t.Parallel()

	for v, want := range map[string]bool{"": false, "false": false, "0": false, "off": false, "True": true, "on": true, "1": true} {
		assert.Equal(t, want, formBool(v), v)
	}
}
