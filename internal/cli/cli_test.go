package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskmanager/internal/app"
	"taskmanager/internal/client"
	"taskmanager/internal/config"
	"taskmanager/internal/repo"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs taskctl with args and returns captured output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(nil)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r, err := repo.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })

	srv := httptest.NewServer(app.NewRouter(app.Deps{
		Config: config.Config{
			App:  config.AppConfig{Env: config.EnvProduction},
			HTTP: config.HTTPConfig{BodyLimit: 10240},
		},
		Log:     zerolog.Nop(),
		Tasks:   service.NewTaskService(r),
		Started: time.Now(),
	}))
	t.Cleanup(srv.Close)

	url := srv.URL + "/api/v1"
	t.Setenv("TASKS_API_URL", url)
	return url
}

// createdID pulls the id out of "Created task <id>".
func createdID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "Created task "); ok {
			return strings.TrimSpace(id)
		}
	}
	t.Fatalf("no id in output:\n%s", out)
	return ""
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd(nil)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"list", "get", "create", "edit", "delete"} {
		assert.Contains(t, names, want)
	}
}

func TestListEmpty(t *testing.T) {
	startServer(t)

	out, err := executeCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestCreateEditDelete(t *testing.T) {
	startServer(t)

	out, err := executeCommand(t, "create", "--title", "Write report", "--description", "Q3 numbers")
	require.NoError(t, err)
	id := createdID(t, out)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "pending")

	out, err = executeCommand(t, "edit", id, "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated task "+id)
	assert.Contains(t, out, "completed")

	out, err = executeCommand(t, "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Q3 numbers")

	out, err = executeCommand(t, "list", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "1 task(s)")

	out, err = executeCommand(t, "list", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")

	out, err = executeCommand(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task "+id)

	_, err = executeCommand(t, "get", id)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "No task found with that ID", apiErr.Message)
}

func TestListSorted(t *testing.T) {
	startServer(t)
	for _, title := range []string{"banana", "apple", "cherry"} {
		_, err := executeCommand(t, "create", "--title", title)
		require.NoError(t, err)
	}

	out, err := executeCommand(t, "list", "--sort", "title:asc")
	require.NoError(t, err)
	a, b, c := strings.Index(out, "apple"), strings.Index(out, "banana"), strings.Index(out, "cherry")
	assert.True(t, a < b && b < c, out)
	assert.Contains(t, out, "3 task(s)")
}

func TestCreateValidationError(t *testing.T) {
	startServer(t)

	_, err := executeCommand(t, "create", "--title", "x", "--status", "done")
	require.Error(t, err)
	assert.Equal(t, "Status is either: pending, in-progress, or completed", err.Error())
}

func TestEditNeedsAField(t *testing.T) {
	startServer(t)

	_, err := executeCommand(t, "edit", "some-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestAPIURLFlagOverridesEnv(t *testing.T) {
	url := startServer(t)
	t.Setenv("TASKS_API_URL", "http://127.0.0.1:1/api/v1")

	_, err := executeCommand(t, "list")
	require.Error(t, err)

	out, err := executeCommand(t, "--api-url", url, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks found.")
}

func TestErrorRendering(t *testing.T) {
	var buf bytes.Buffer
	Error(&buf, errors.New("boom"), true)
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestStatusCompletion(t *testing.T) {
	for _, sub := range []string{"list", "create", "edit"} {
		t.Run(sub, func(t *testing.T) {
			root := NewRootCmd(nil)
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(io.Discard)
			args := []string{cobra.ShellCompRequestCmd, sub}
			if sub == "edit" {
				args = append(args, "some-id")
			}
			root.SetArgs(append(args, "--status", "in"))
			require.NoError(t, root.Execute())

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			require.Len(t, lines, 2, out.String())
			assert.Equal(t, "in-progress", lines[0])
			assert.Equal(t, ":4", lines[1])
		})
	}

	all, directive := completeStatus(nil, nil, "")
	assert.Equal(t, []string{"pending", "in-progress", "completed"}, all)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestTransportErrorRendering(t *testing.T) {
	t.Setenv("TASKS_API_URL", "http://127.0.0.1:1/api/v1")

	_, err := executeCommand(t, "list")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong", err.Error())

	var buf bytes.Buffer
	Error(&buf, err, true)
	assert.True(t, strings.HasPrefix(buf.String(), "Error: Something went wrong ("), buf.String())
}
