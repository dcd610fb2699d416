package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesSeedFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/withdraw_twice.yaml")
	require.NoError(t, err)

	assert.Equal(t, "withdraw_twice", s.Name)
	assert.Equal(t, filepath.FromSlash("../seed/testdata/sample.yaml"), s.SeedFile)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "application.withdraw", s.Steps[1].Op)
	assert.Nil(t, s.Steps[1].Expect)
	require.NotNil(t, s.Steps[2].Expect)
	assert.Equal(t, "WITHDRAWAL_ALREADY_REQUESTED", s.Steps[2].Expect.Error)
}

func TestLoadScenario_InlineSeed(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/booking_lifecycle.yaml")
	require.NoError(t, err)

	require.NotNil(t, s.Seed)
	assert.Empty(t, s.SeedFile)
	assert.Len(t, s.Seed.Users, 4)
	require.Len(t, s.Seed.Projects, 1)
	assert.Equal(t, []string{"T2109876H"}, s.Seed.Projects[0].Officers)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nstep: []\n",
			wantErr: "field step not found",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nseed_file: s.yaml\nsteps: [{op: application.withdraw}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nseed_file: s.yaml\nsteps: [{op: application.withdraw}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no seed",
			yaml:    "name: x\ndescription: d\nsteps: [{op: application.withdraw}]\n",
			wantErr: "exactly one of seed and seed_file",
		},
		{
			name:    "both seeds",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nseed: {users: []}\nsteps: [{op: application.withdraw}]\n",
			wantErr: "exactly one of seed and seed_file",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nsteps: []\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nsteps: [{op: application.cancel}]\n",
			wantErr: `unknown op "application.cancel"`,
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nsteps: [{op: application.withdraw}]\nassertions: [{type: final_state}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "remaining units without count",
			yaml:    "name: x\ndescription: d\nseed_file: s.yaml\nsteps: [{op: application.withdraw}]\nassertions: [{type: remaining_units, project: P, flat_type: 2-Room}]\n",
			wantErr: "project, flat_type and count are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ZeroCountIsSet(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: x
description: d
seed_file: s.yaml
steps: [{op: application.withdraw}]
assertions: [{type: officer_slots, project: P, count: 0}]
`))
	require.NoError(t, err)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 0, *s.Assertions[0].Count)
}

func TestAllScenarioFilesParse(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)

		golden := filepath.Join("testdata", "golden", trimExt(filepath.Base(f))+".golden")
		_, err = os.Stat(golden)
		assert.NoError(t, err, "every scenario has a golden trace")
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
