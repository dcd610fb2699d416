package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/testutil"
)

func projectNames(ps []domain.Project) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

func TestQueryAvailableProjects(t *testing.T) {
	e := newTestEngine(t)

	user := func(nric string) domain.User {
		u, err := e.User(nric)
		require.NoError(t, err)
		return u
	}

	t.Run("married sees every flat type", func(t *testing.T) {
		got := e.QueryAvailableProjects(user(testutil.MarriedApplicant))
		assert.Equal(t, []string{testutil.Acacia, testutil.Birch}, projectNames(got))
		assert.Equal(t, []string{domain.TwoRoom, domain.ThreeRoom}, got[0].FlatTypeLabels())
	})

	t.Run("single 35 sees two-room only", func(t *testing.T) {
		got := e.QueryAvailableProjects(user(testutil.SingleApplicant))
		require.Equal(t, []string{testutil.Acacia}, projectNames(got))
		assert.Equal(t, []string{domain.TwoRoom}, got[0].FlatTypeLabels())
	})

	t.Run("young single sees nothing", func(t *testing.T) {
		assert.Empty(t, e.QueryAvailableProjects(user(testutil.YoungSingle)))
	})

	t.Run("managers see nothing", func(t *testing.T) {
		assert.Nil(t, e.QueryAvailableProjects(user(testutil.Manager)))
	})

	t.Run("officers are applicants too", func(t *testing.T) {
		got := e.QueryAvailableProjects(user(testutil.Officer))
		assert.Equal(t, []string{testutil.Acacia}, projectNames(got))
	})
}

func TestQueryAvailableProjects_HidesHandledProjects(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	officer, err := e.User(testutil.Officer)
	require.NoError(t, err)

	require.NoError(t, e.RegisterOfficer(ctx, testutil.Officer, testutil.Acacia))
	assert.Empty(t, e.QueryAvailableProjects(officer), "a pending registration hides the project")
	_, err = e.SubmitApplication(ctx, testutil.Officer, testutil.Acacia, domain.TwoRoom)
	requireCode(t, err, domain.CodeHandlingProject)

	require.NoError(t, e.ProcessOfficerRegistration(ctx, testutil.Manager, testutil.Officer, testutil.Acacia, domain.Reject))
	assert.Equal(t, []string{testutil.Acacia}, projectNames(e.QueryAvailableProjects(officer)))
}

func TestQueryAvailableProjects_HidesInvisible(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.ToggleVisibility(context.Background(), testutil.Acacia)
	require.NoError(t, err)

	u, err := e.User(testutil.MarriedApplicant)
	require.NoError(t, err)
	assert.Equal(t, []string{testutil.Birch}, projectNames(e.QueryAvailableProjects(u)))
	assert.Len(t, e.Projects(), 2, "Projects lists hidden projects")
}

func TestQueryAvailableProjects_ReturnsCopies(t *testing.T) {
	e := newTestEngine(t)
	u, err := e.User(testutil.MarriedApplicant)
	require.NoError(t, err)

	got := e.QueryAvailableProjects(u)
	ft := got[0].FlatTypes[domain.TwoRoom]
	ft.RemainingUnits = 0
	got[0].FlatTypes[domain.TwoRoom] = ft
	got[0].Name = "Mutated"

	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.TwoRoom))
	assert.Equal(t, []string{testutil.Acacia, testutil.Birch}, projectNames(e.QueryAvailableProjects(u)))
}

func TestApplicationsForProject(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	_, err = e.SubmitApplication(ctx, testutil.YoungApplicant, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	_, err = e.SubmitApplication(ctx, testutil.SingleApplicant, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.YoungApplicant, testutil.Acacia, domain.Approve))

	assert.Len(t, e.ApplicationsForProject(testutil.Acacia), 3)
	assert.Empty(t, e.ApplicationsForProject(testutil.Birch))

	pending := e.ApplicationsForProject(testutil.Acacia, domain.StatusPending)
	require.Len(t, pending, 2)
	for _, a := range pending {
		assert.Equal(t, domain.StatusPending, a.Status)
	}

	both := e.ApplicationsForProject(testutil.Acacia, domain.StatusPending, domain.StatusSuccessful)
	assert.Len(t, both, 3)
}

func TestUserLookup(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.User("S0000000Z")
	requireCode(t, err, domain.CodeUserNotFound)
	assert.True(t, domain.IsNotFound(err))

	_, err = e.Project("Nowhere")
	requireCode(t, err, domain.CodeProjectNotFound)
}
