package scenario_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/listview/pkg/scenario"
)

func loadTestdata(t *testing.T, name string) *scenario.Scenario {
	t.Helper()

	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)

	sc, err := scenario.Parse(data)
	require.NoError(t, err)

	return sc
}

func TestParse_Testdata(t *testing.T) {
	t.Parallel()

	sc := loadTestdata(t, "scroll.yaml")

	assert.Equal(t, "scroll and splice", sc.Name)
	assert.Equal(t, scenario.Viewport{Width: 20, Height: 25}, sc.Viewport)
	require.Len(t, sc.Items, 3)
	assert.Equal(t, scenario.Item{Key: "b", Size: 20}, sc.Items[1])

	require.Len(t, sc.Steps, 9)
	assert.Equal(t, "expect", sc.Steps[0].Op())
	assert.Equal(t, "scroll", sc.Steps[1].Op())
	require.NotNil(t, sc.Steps[1].Scroll.To)
	assert.Equal(t, 15, *sc.Steps[1].Scroll.To)
	assert.Equal(t, "splice", sc.Steps[3].Op())
	assert.Equal(t, "header", sc.Steps[3].Splice.Items[0].Template)
	assert.NotNil(t, sc.Steps[8].Expect.Rendered)
	assert.Empty(t, sc.Steps[8].Expect.Rendered)

	assert.Equal(t, []string{scenario.DefaultTemplate, "header"}, sc.Templates())
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing steps", "name: x\n", "steps"},
		{"negative size", "name: x\nitems: [{key: a, size: -1}]\nsteps: [{expect: {live_rows: 0}}]\n", "size"},
		{"two ops in a step", "name: x\nsteps: [{render: {top: 0, height: 1}, scroll: {by: 1}}]\n", "steps.0"},
		{"unknown op", "name: x\nsteps: [{jump: 3}]\n", "jump"},
		{"scroll with both", "name: x\nsteps: [{scroll: {to: 1, by: 2}}]\n", "scroll"},
		{"empty expect", "name: x\nsteps: [{expect: {}}]\n", "expect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := scenario.Parse([]byte(tt.doc))
			require.ErrorIs(t, err, scenario.ErrInvalidScenario)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_NotYAML(t *testing.T) {
	t.Parallel()

	_, err := scenario.Parse([]byte("name: [unclosed"))
	require.ErrorIs(t, err, scenario.ErrInvalidScenario)

	_, err = scenario.Parse(nil)
	require.ErrorIs(t, err, scenario.ErrInvalidScenario)
}
