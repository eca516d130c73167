package appengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/appengine-prune/pkg/common/runner"
	domainerrors "github.com/Azure/appengine-prune/pkg/domain/errors"
)

func TestGcloudCmdRunner_Commands(t *testing.T) {
	g := NewGcloudCmdRunner(&runner.FakeCommandRunner{}, "/opt/sdk/bin/gcloud").(*GcloudCmdRunner)

	assert.Equal(t,
		[]string{"/opt/sdk/bin/gcloud", "--project", "p", "app", "versions", "list"},
		g.ListCommand("p"))
	assert.Equal(t,
		[]string{"/opt/sdk/bin/gcloud", "--quiet", "--project", "p", "app", "versions", "delete", "a", "b"},
		g.DeleteCommand("p", []string{"a", "b"}))
}

func TestExecutor_Delete(t *testing.T) {
	fake := &runner.FakeCommandRunner{}
	exec := NewExecutor(NewGcloudCmdRunner(fake, ""), false)

	result, err := exec.Delete(context.Background(), "p", []string{"v2", "v1", "v2"})
	require.NoError(t, err)

	assert.True(t, result.Executed)
	assert.Equal(t, []string{"v1", "v2"}, result.Labels)
	require.Len(t, fake.Calls(), 1)
	assert.Equal(t,
		[]string{"gcloud", "--quiet", "--project", "p", "app", "versions", "delete", "v1", "v2"},
		fake.Calls()[0])
}

func TestExecutor_EmptyIsNoop(t *testing.T) {
	fake := &runner.FakeCommandRunner{}
	exec := NewExecutor(NewGcloudCmdRunner(fake, ""), false)

	result, err := exec.Delete(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Empty(t, result.Labels)
	assert.Empty(t, fake.Calls())
}

func TestExecutor_DryRun(t *testing.T) {
	fake := &runner.FakeCommandRunner{}
	exec := NewExecutor(NewGcloudCmdRunner(fake, ""), true)
	assert.True(t, exec.DryRun())

	result, err := exec.Delete(context.Background(), "p", []string{"old"})
	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Equal(t, []string{"old"}, result.Labels)
	assert.Equal(t, []string{"gcloud", "--quiet", "--project", "p", "app", "versions", "delete", "old"}, result.Command)
	assert.Empty(t, fake.Calls())
}

func TestExecutor_Failure(t *testing.T) {
	fake := &runner.FakeCommandRunner{ErrStr: "version is serving"}
	exec := NewExecutor(NewGcloudCmdRunner(fake, ""), false)

	result, err := exec.Delete(context.Background(), "p", []string{"v1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCommandFailed))
	assert.False(t, result.Executed)
	assert.Contains(t, err.Error(), "version is serving")
}

func TestCheckGcloudInstalled(t *testing.T) {
	assert.NoError(t, CheckGcloudInstalled("sh"))

	err := CheckGcloudInstalled("definitely-not-a-real-gcloud-binary")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrCommandFailed))
	assert.Equal(t, domainerrors.CodeToolNotFound, domainerrors.CodeOf(err))
}
