package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/statetree/production"
)

func testdata(name string) string {
	return filepath.Join("..", "..", "chartfile", "testdata", name)
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunSendsEventsInOrder(t *testing.T) {
	out, _, err := execute(t, "", "run", testdata("door.yaml"), "lock", "unlock", "open")
	require.NoError(t, err)
	assert.Equal(t, "/opened\n", out)
}

func TestRunConcurrentChart(t *testing.T) {
	out, _, err := execute(t, "", "run", testdata("player.yaml"), "play", "mute")
	require.NoError(t, err)
	assert.Equal(t, "/transport/playing\n/volume/muted\n", out)
}

func TestRunReadsStdin(t *testing.T) {
	in := "lock\n\n# comment\nunlock extra args\n"
	out, _, err := execute(t, in, "run", "--stdin", testdata("door.yaml"), "open", "close")
	require.NoError(t, err)
	assert.Equal(t, "/closed/unlocked\n", out)
}

func TestRunTrace(t *testing.T) {
	_, errOut, err := execute(t, "", "run", "--trace", testdata("door.yaml"), "open")
	require.NoError(t, err)
	assert.Contains(t, errOut, "trace: enter /closed/unlocked\n")
	assert.Contains(t, errOut, "trace: exit /closed\n")
	assert.Contains(t, errOut, "trace: event open on / handled=true\n")
}

func TestRunDebugLogsActions(t *testing.T) {
	_, errOut, err := execute(t, "", "run", "--log-level", "debug", testdata("door.yaml"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "msg=action name=closedEnter state=/closed")
}

func TestRunWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, errOut, err := execute(t, "", "run", "--snapshot-dir", dir, "--format", "yaml", testdata("door.yaml"), "open")
	require.NoError(t, err)
	assert.Contains(t, errOut, "snapshot: ")

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "/opened")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"run", "nope.yaml"}, "nope.yaml"},
		{"bad log level", []string{"run", "--log-level", "loud", testdata("door.yaml")}, "log level"},
		{"bad format", []string{"run", "--snapshot-dir", "x", "--format", "xml", testdata("door.yaml")}, "unknown snapshot format"},
		{"no chart", []string{"run"}, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "bad format" {
				tt.args[2] = t.TempDir()
			}
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDot(t *testing.T) {
	out, _, err := execute(t, "", "dot", "--enter", "--events", testdata("door.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `digraph "door" {`))
	assert.Contains(t, out, "fillcolor=lightgreen")
	assert.Contains(t, out, "lock")
}

func TestCheck(t *testing.T) {
	out, _, err := execute(t, "", "check", testdata("door.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ok: door (5 states)\n", out)

	out, _, err = execute(t, "", "check", testdata("player.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ok: player (8 states)\n", out)
}

func TestEventsFromStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := eventsFrom(ctx, []string{"a", "b", "c"}, strings.NewReader("d\ne\n"))

	first := <-src.Events()
	assert.Equal(t, "a", first.Name)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range src.Events() {
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event source did not close after cancel")
	}
}

func TestEventsFromOrder(t *testing.T) {
	src := eventsFrom(context.Background(), []string{"a"}, strings.NewReader("b x y\n\n# skip\nc\n"))
	var got []production.Event
	for ev := range src.Events() {
		got = append(got, ev)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
	assert.Equal(t, []any{"x", "y"}, got[1].Args)
	assert.Equal(t, "c", got[2].Name)
}
