package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysAndSkipsWhitespace(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"trace":         []any{map[string]any{"step": 1, "op": "application.submit"}},
		"scenario_name": "demo",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"demo","trace":[{"op":"application.submit","step":1}]}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(got))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	got, err := MarshalCanonical("x\u2028y")
	require.NoError(t, err)
	assert.Equal(t, "\"x\u2028y\"", string(got))

	// A literal backslash followed by the text u2028 stays escaped.
	got, err = MarshalCanonical(`x\u2028y`)
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028y"`, string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00, which sorts before
	// U+FF61 in UTF-16 even though its UTF-8 bytes sort after.
	got, err := MarshalCanonical(map[string]any{"\U0001F600": 1, "\uff61": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uff61\":2}", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"when": time.Now()})
	assert.Error(t, err)
}

func TestSnapshotDigest_OrderIndependent(t *testing.T) {
	open := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Snapshot{
		Users: []User{
			{NRIC: "S1111111A", Name: "A", Age: 40, MaritalStatus: Single, Role: RoleApplicant},
			{NRIC: "S2222222B", Name: "B", Age: 30, MaritalStatus: Married, Role: RoleApplicant},
		},
		Projects: []Project{{
			Name: "Acacia", OpenDate: open, CloseDate: open.AddDate(0, 1, 0),
			FlatTypes: map[string]FlatType{TwoRoom: {Label: TwoRoom, TotalUnits: 2, RemainingUnits: 2, Price: 1}},
		}},
	}
	b := a
	b.Users = []User{a.Users[1], a.Users[0]}

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)

	// The receiver's slices are not reordered by Digest.
	assert.Equal(t, "S2222222B", b.Users[0].NRIC)

	c := a
	c.Projects = []Project{a.Projects[0].Clone()}
	ft := c.Projects[0].FlatTypes[TwoRoom]
	ft.RemainingUnits = 1
	c.Projects[0].FlatTypes[TwoRoom] = ft
	dc, err := c.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}
