package commands

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/listview/pkg/observability"
)

const passingScenario = `name: three lines
viewport: {width: 10, height: 2}
items:
  - {key: a, size: 1}
  - {key: b, size: 1}
  - {key: c, size: 1}
steps:
  - expect: {rendered: [0, 1, 2]}
  - scroll: {to: 1}
  - expect: {rendered: [1, 2], rows: [b, c]}
`

const failingScenario = `name: wrong window
items:
  - {key: a, size: 1}
steps:
  - expect: {content_height: 7}
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "listview", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(sub)

	var out, errOut bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestReplay_TableReport(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewReplayCommand(), writeScenario(t, passingScenario))
	require.NoError(t, err)

	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "three lines")
	assert.Contains(t, out, "load")
	assert.Contains(t, out, "created 3")
}

func TestReplay_YAMLReport(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewReplayCommand(), "--format", FormatYAML, writeScenario(t, passingScenario))
	require.NoError(t, err)

	var report struct {
		Name   string `yaml:"name"`
		Passed bool   `yaml:"passed"`
		Steps  []struct {
			Op       string `yaml:"op"`
			Rendered []int  `yaml:"rendered"`
		} `yaml:"steps"`
	}

	require.NoError(t, yaml.Unmarshal([]byte(out), &report))

	assert.Equal(t, "three lines", report.Name)
	assert.True(t, report.Passed)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, "scroll", report.Steps[2].Op)
	assert.Equal(t, []int{1, 2}, report.Steps[2].Rendered)
}

func TestReplay_FailingScenario(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewReplayCommand(),
		writeScenario(t, passingScenario), writeScenario(t, failingScenario))
	require.ErrorIs(t, err, ErrScenariosFailed)

	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "content_height: want 7, got 1")
}

func TestReplay_InvalidScenario(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewReplayCommand(), writeScenario(t, "name: no steps\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestReplay_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewReplayCommand(), "--format", "xml", writeScenario(t, passingScenario))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReplay_Plot(t *testing.T) {
	t.Parallel()

	plot := filepath.Join(t.TempDir(), "replay.html")

	_, err := execute(t, NewReplayCommand(), "--plot", plot, writeScenario(t, passingScenario))
	require.NoError(t, err)

	html, err := os.ReadFile(plot)
	require.NoError(t, err)

	assert.Contains(t, string(html), "echarts")
	assert.Contains(t, string(html), "three lines")
	assert.Contains(t, string(html), "pooled rows")
}

func TestReplay_MetricsServer(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewReplayCommand(), "--metrics-addr", "127.0.0.1:0", writeScenario(t, passingScenario))
	require.NoError(t, err)
}

func TestReplay_PrometheusReadsRuntimeMeter(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "replay"}
	AddGlobalFlags(cmd)

	rt, err := setup(cmd, observability.ModeCLI, io.Discard, withMetricsAddr("127.0.0.1:0"))
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, rt.close(context.Background())) })

	assert.Equal(t, "127.0.0.1:0", rt.metricsAddr)
	require.NotNil(t, rt.providers.MetricsHandler)

	_, err = (&ReplayCommand{}).replay(context.Background(), writeScenario(t, passingScenario), rt)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rt.providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest("GET", metricsPath, nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "listview_rows_attached")
}

func TestSetup_NoMetricsAddrNoExporter(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "replay"}
	AddGlobalFlags(cmd)

	rt, err := setup(cmd, observability.ModeCLI, io.Discard, withMetricsAddr(""))
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, rt.close(context.Background())) })

	assert.Empty(t, rt.metricsAddr)
	assert.Nil(t, rt.providers.MetricsHandler)
}

func TestFormatRendered(t *testing.T) {
	t.Parallel()

	long := make([]int, 20)
	for i := range long {
		long[i] = i + 5
	}

	assert.Equal(t, "-", formatRendered(nil))
	assert.Equal(t, "1,2,3", formatRendered([]int{1, 2, 3}))
	assert.Equal(t, "5..24 (20)", formatRendered(long))
}

func TestBrowse_StopsWithContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o600))

	cmd := newBrowseCommandWithScreen(func() (tcell.Screen, error) {
		return tcell.NewSimulationScreen(""), nil
	})

	root := &cobra.Command{Use: "listview", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(cmd)
	root.SetArgs([]string{"browse", filepath.Join(dir, "main.go")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, root.ExecuteContext(ctx))
}

func TestBrowse_MissingPath(t *testing.T) {
	t.Parallel()

	cmd := newBrowseCommandWithScreen(func() (tcell.Screen, error) {
		return tcell.NewSimulationScreen(""), nil
	})

	_, err := execute(t, cmd, filepath.Join(t.TempDir(), "absent"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
