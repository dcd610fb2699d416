package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/testutil"
)

// End-to-end walkthroughs over the sample state.

func TestScenario_SingleApplicantLargerFlat(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.SubmitApplication(context.Background(), testutil.SingleApplicant, testutil.Birch, domain.ThreeRoom)
	requireCode(t, err, domain.CodeNotEligible)
	assert.Equal(t, 3, remaining(t, e, testutil.Birch, domain.ThreeRoom))
}

func TestScenario_MarriedApplicantUnder35(t *testing.T) {
	e := newTestEngine(t)

	app, err := e.SubmitApplication(context.Background(), testutil.YoungApplicant, testutil.Birch, domain.ThreeRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Equal(t, 2, remaining(t, e, testutil.Birch, domain.ThreeRoom))
}

func TestScenario_WithdrawTwice(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.YoungApplicant, testutil.Birch, domain.ThreeRoom)
	require.NoError(t, err)
	require.NoError(t, e.RequestWithdraw(ctx, testutil.YoungApplicant))

	requireCode(t, e.RequestWithdraw(ctx, testutil.YoungApplicant), domain.CodeWithdrawalAlreadyRequested)
	assert.Equal(t, domain.StatusWithdrawalRequested, status(t, e, testutil.YoungApplicant))
}

func TestScenario_ManagerOverlap(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first := cedarSpec(-1, 1)
	_, err := e.CreateProject(ctx, testutil.FreshManager, first)
	require.NoError(t, err)

	overlapping := cedarSpec(0, 10)
	overlapping.Name = "Dahlia Court"
	_, err = e.CreateProject(ctx, testutil.FreshManager, overlapping)
	requireCode(t, err, domain.CodeOverlappingAssignment)

	later := cedarSpec(2, 10)
	later.Name = "Dahlia Court"
	_, err = e.CreateProject(ctx, testutil.FreshManager, later)
	require.NoError(t, err)

	u, err := e.User(testutil.FreshManager)
	require.NoError(t, err)
	assert.Equal(t, "Dahlia Court", u.AssignedProject)
	assert.Len(t, e.ProjectsManagedBy(testutil.FreshManager), 2)
}

func TestScenario_OfficerAlreadyApplied(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.Officer, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)

	requireCode(t, e.RegisterOfficer(ctx, testutil.Officer, testutil.Acacia), domain.CodeAlreadyAppliedAsApplicant)
	assert.Empty(t, e.Registrations(testutil.Officer))
}

func TestScenario_LastOfficerSlot(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.RegisterOfficer(ctx, testutil.Officer, testutil.Birch))
	require.NoError(t, e.RegisterOfficer(ctx, testutil.SecondOfficer, testutil.Birch))
	require.NoError(t, e.ProcessOfficerRegistration(ctx, testutil.SecondManager, testutil.Officer, testutil.Birch, domain.Approve))

	err := e.ProcessOfficerRegistration(ctx, testutil.SecondManager, testutil.SecondOfficer, testutil.Birch, domain.Approve)
	requireCode(t, err, domain.CodeNoSlotsAvailable)

	p, err := e.Project(testutil.Birch)
	require.NoError(t, err)
	assert.Equal(t, 1, p.OfficerSlots)
	assert.Equal(t, []string{testutil.Officer}, p.Officers)
}

func TestScenario_FullLifecycleIsIdempotentUnderReload(t *testing.T) {
	e := newTestEngine(t)
	runMixedWorkload(t, e)

	snap := e.Snapshot()
	digest, err := snap.Digest()
	require.NoError(t, err)

	// Reloading a state the engine produced is accepted and changes nothing.
	require.NoError(t, e.Load(snap))
	again, err := e.Snapshot().Digest()
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}
