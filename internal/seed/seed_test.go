package seed

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/testutil"
)

func TestLoad_SampleMatchesFixtures(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "sample.yaml"))
	require.NoError(t, err)

	snap, err := doc.Snapshot()
	require.NoError(t, err)

	want := testutil.Snapshot()
	want.Sort()
	assert.Equal(t, want, snap)
}

func TestSnapshot_RosterAndDefaults(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "rostered.yaml"))
	require.NoError(t, err)

	snap, err := doc.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Projects, 2)
	cedar, old := snap.Projects[0], snap.Projects[1]
	require.Equal(t, "Cedar Heights", cedar.Name)

	assert.True(t, cedar.Visible, "visible defaults to true")
	assert.False(t, old.Visible)
	assert.Equal(t, 2, cedar.OfficerSlots)
	assert.Equal(t, []string{"T2109876H", "S6543210I"}, cedar.Officers)
	assert.Equal(t, domain.FlatType{Label: domain.TwoRoom, TotalUnits: 4, RemainingUnits: 1, Price: 300000}, cedar.FlatTypes[domain.TwoRoom])
	assert.Equal(t, 6, cedar.FlatTypes[domain.ThreeRoom].RemainingUnits, "remaining defaults to units")
	assert.Equal(t, 0, old.FlatTypes[domain.TwoRoom].RemainingUnits)

	assert.Equal(t, []domain.OfficerRegistration{
		{OfficerNRIC: "S6543210I", ProjectName: "Cedar Heights", Status: domain.RegistrationApproved},
		{OfficerNRIC: "T2109876H", ProjectName: "Cedar Heights", Status: domain.RegistrationApproved},
	}, snap.Registrations)

	byNRIC := map[string]domain.User{}
	for _, u := range snap.Users {
		byNRIC[u.NRIC] = u
	}
	assert.Equal(t, "Cedar Heights", byNRIC["T2109876H"].AssignedProject, "NRICs are normalized")
	assert.Equal(t, "Cedar Heights", byNRIC["T8765432F"].AssignedProject, "last managed project in document order")
}

func TestParse_SchemaViolations(t *testing.T) {
	const project = `
projects:
  - name: P
    neighborhood: N
    open_date: 2026-01-01
    close_date: 2026-02-01
    manager: T8765432F
    max_officer_slots: 1
    flat_types: [{label: 2-Room, units: 1, price: 1}]
`
	const manager = "users:\n  - {nric: T8765432F, name: M, age: 40, marital_status: SINGLE, role: MANAGER}\n"

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad nric", "users:\n  - {nric: X123, name: A, age: 40, marital_status: SINGLE, role: APPLICANT}\n", "nric"},
		{"bad role", "users:\n  - {nric: S1234567A, name: A, age: 40, marital_status: SINGLE, role: ADMIN}\n", "role"},
		{"bad status", "users:\n  - {nric: S1234567A, name: A, age: 40, marital_status: DIVORCED, role: APPLICANT}\n", "marital_status"},
		{"negative age", "users:\n  - {nric: S1234567A, name: A, age: -1, marital_status: SINGLE, role: APPLICANT}\n", "age"},
		{"unknown key", "users:\n  - {nric: S1234567A, name: A, age: 40, marital_status: SINGLE, role: APPLICANT, email: a@b}\n", "email"},
		{"bad date", manager + `
projects:
  - name: P
    neighborhood: N
    open_date: 2026-13-01
    close_date: 2026-02-01
    manager: T8765432F
    max_officer_slots: 1
    flat_types: [{label: 2-Room, units: 1, price: 1}]
`, "open_date"},
		{"remaining above units", manager + `
projects:
  - name: P
    neighborhood: N
    open_date: 2026-01-01
    close_date: 2026-02-01
    manager: T8765432F
    max_officer_slots: 1
    flat_types: [{label: 2-Room, units: 1, remaining: 2, price: 1}]
`, "remaining"},
		{"no flat types", manager + `
projects:
  - name: P
    neighborhood: N
    open_date: 2026-01-01
    close_date: 2026-02-01
    manager: T8765432F
    max_officer_slots: 1
    flat_types: []
`, "flat_types"},
		{"unknown manager", "users: []\n" + project, "manager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err), "error: %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_CrossRecordRules(t *testing.T) {
	const users = `
users:
  - {nric: T8765432F, name: M, age: 40, marital_status: SINGLE, role: MANAGER}
  - {nric: T2109876H, name: O, age: 30, marital_status: SINGLE, role: OFFICER}
  - {nric: S1234567A, name: A, age: 40, marital_status: SINGLE, role: APPLICANT}
`
	project := func(name, officers string, slots int) string {
		return `
  - name: ` + name + `
    neighborhood: N
    open_date: 2026-01-01
    close_date: 2026-02-01
    manager: T8765432F
    max_officer_slots: ` + strconv.Itoa(slots) + `
    officers: ` + officers + `
    flat_types: [{label: 2-Room, units: 1, price: 1}]
`
	}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"roster over slots", users + "projects:" + project("P", "[T2109876H]", 0), "exceed"},
		{"applicant on roster", users + "projects:" + project("P", "[S1234567A]", 1), "not a known officer"},
		{"officer on two rosters", users + "projects:" + project("P", "[T2109876H]", 1) + project("Q", "[T2109876H]", 1), "rostered on"},
		{"duplicate project", users + "projects:" + project("P", "[]", 1) + project("P", "[]", 1), "duplicate project"},
		{"duplicate user", users + "  - {nric: t8765432f, name: M2, age: 40, marital_status: SINGLE, role: MANAGER}\n", "duplicate user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err), "error: %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_InvertedWindow(t *testing.T) {
	_, err := Parse([]byte(`
users:
  - {nric: T8765432F, name: M, age: 40, marital_status: SINGLE, role: MANAGER}
projects:
  - name: P
    neighborhood: N
    open_date: 2026-02-01
    close_date: 2026-01-01
    manager: T8765432F
    max_officer_slots: 1
    flat_types: [{label: 2-Room, units: 1, price: 1}]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closes before it opens")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
