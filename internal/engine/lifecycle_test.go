package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/testutil"
)

func TestSubmit_ReservesUnit(t *testing.T) {
	e := newTestEngine(t)

	app, err := e.SubmitApplication(context.Background(), testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, app.Status)
	assert.True(t, app.UnitHeld)
	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom))
	assert.Equal(t, app, mustApplication(t, e, testutil.MarriedApplicant))
}

func mustApplication(t *testing.T, e *Engine, nric string) domain.Application {
	t.Helper()
	app, err := e.Application(nric)
	require.NoError(t, err)
	return app
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, e *Engine)
		applicant string
		project   string
		flatType  string
		want      domain.ErrorCode
	}{
		{name: "unknown user", applicant: "S0000000Z", project: testutil.Acacia, flatType: domain.TwoRoom, want: domain.CodeUserNotFound},
		{name: "manager", applicant: testutil.Manager, project: testutil.Birch, flatType: domain.ThreeRoom, want: domain.CodeRoleNotPermitted},
		{name: "unknown project", applicant: testutil.MarriedApplicant, project: "Nowhere", flatType: domain.TwoRoom, want: domain.CodeProjectNotFound},
		{name: "unknown flat type", applicant: testutil.MarriedApplicant, project: testutil.Birch, flatType: domain.TwoRoom, want: domain.CodeFlatTypeNotFound},
		{name: "single under 35", applicant: testutil.YoungSingle, project: testutil.Acacia, flatType: domain.TwoRoom, want: domain.CodeNotEligible},
		{name: "single larger flat", applicant: testutil.SingleApplicant, project: testutil.Acacia, flatType: domain.ThreeRoom, want: domain.CodeNotEligible},
		{
			name: "hidden project",
			setup: func(t *testing.T, e *Engine) {
				visible, err := e.ToggleVisibility(context.Background(), testutil.Birch)
				require.NoError(t, err)
				require.False(t, visible)
			},
			applicant: testutil.MarriedApplicant, project: testutil.Birch, flatType: domain.ThreeRoom,
			want: domain.CodeProjectNotVisible,
		},
		{
			name: "already active",
			setup: func(t *testing.T, e *Engine) {
				_, err := e.SubmitApplication(context.Background(), testutil.MarriedApplicant, testutil.Birch, domain.ThreeRoom)
				require.NoError(t, err)
			},
			applicant: testutil.MarriedApplicant, project: testutil.Acacia, flatType: domain.TwoRoom,
			want: domain.CodeAlreadyHasActiveApplication,
		},
		{
			name:      "officer handling project",
			setup:     approveOfficer,
			applicant: testutil.Officer, project: testutil.Acacia, flatType: domain.TwoRoom,
			want: domain.CodeHandlingProject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			if tt.setup != nil {
				tt.setup(t, e)
			}
			before := e.Snapshot()

			_, err := e.SubmitApplication(context.Background(), tt.applicant, tt.project, tt.flatType)
			requireCode(t, err, tt.want)
			assert.Equal(t, before, e.Snapshot(), "rejected submit must not change state")
		})
	}
}

func TestSubmit_NoUnitsLeft(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.SingleApplicant, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	_, err = e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining(t, e, testutil.Acacia, domain.TwoRoom))

	_, err = e.SubmitApplication(ctx, testutil.YoungApplicant, testutil.Acacia, domain.TwoRoom)
	requireCode(t, err, domain.CodeNoUnitsAvailable)

	_, err = e.Application(testutil.YoungApplicant)
	requireCode(t, err, domain.CodeApplicationNotFound)
	assert.Equal(t, 0, remaining(t, e, testutil.Acacia, domain.TwoRoom))
	requireInvariants(t, e)
}

func TestSubmit_OfficerMayApplyElsewhere(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, e.RegisterOfficer(ctx, testutil.Officer, testutil.Birch))

	app, err := e.SubmitApplication(ctx, testutil.Officer, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	requireInvariants(t, e)
}

func TestDecide_ApproveAndReject(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	_, err = e.SubmitApplication(ctx, testutil.YoungApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining(t, e, testutil.Acacia, domain.ThreeRoom))

	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve))
	assert.Equal(t, domain.StatusSuccessful, status(t, e, testutil.MarriedApplicant))
	assert.Equal(t, 1, remaining(t, e, testutil.Acacia, domain.ThreeRoom), "approval keeps the unit held")

	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.YoungApplicant, testutil.Acacia, domain.Reject))
	app := mustApplication(t, e, testutil.YoungApplicant)
	assert.Equal(t, domain.StatusUnsuccessful, app.Status)
	assert.False(t, app.UnitHeld)
	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom), "rejection releases the unit")

	// The rejected applicant may apply again; the terminal record is replaced.
	_, err = e.SubmitApplication(ctx, testutil.YoungApplicant, testutil.Birch, domain.ThreeRoom)
	require.NoError(t, err)
	assert.Equal(t, testutil.Birch, mustApplication(t, e, testutil.YoungApplicant).ProjectName)
	requireInvariants(t, e)
}

func TestDecide_Errors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)

	err = e.ApproveRejectApplication(ctx, testutil.SecondManager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve)
	requireCode(t, err, domain.CodeNotManaging)

	err = e.ApproveRejectApplication(ctx, testutil.Manager, testutil.SingleApplicant, testutil.Acacia, domain.Approve)
	requireCode(t, err, domain.CodeNoPendingApplication)

	err = e.ApproveRejectApplication(ctx, testutil.SecondManager, testutil.MarriedApplicant, testutil.Birch, domain.Approve)
	requireCode(t, err, domain.CodeNoPendingApplication, "application is for another project")

	err = e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Decision("MAYBE"))
	requireCode(t, err, domain.CodeInvalidInput)

	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve))
	err = e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Reject)
	requireCode(t, err, domain.CodeNoPendingApplication, "already decided")
}

func TestWithdraw_ApproveReleasesUnit(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve))
	require.NoError(t, e.RequestWithdraw(ctx, testutil.MarriedApplicant))

	app := mustApplication(t, e, testutil.MarriedApplicant)
	assert.Equal(t, domain.StatusWithdrawalRequested, app.Status)
	assert.Equal(t, domain.StatusSuccessful, app.PreviousStatus)
	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom))

	require.NoError(t, e.ApproveWithdraw(ctx, testutil.Manager, testutil.MarriedApplicant))
	app = mustApplication(t, e, testutil.MarriedApplicant)
	assert.Equal(t, domain.StatusWithdrawn, app.Status)
	assert.False(t, app.Active())
	assert.Equal(t, 3, remaining(t, e, testutil.Acacia, domain.ThreeRoom))

	// The slot is free again.
	_, err = e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.TwoRoom)
	require.NoError(t, err)
	requireInvariants(t, e)
}

func TestWithdraw_RejectRestoresPreviousStatus(t *testing.T) {
	for _, approved := range []bool{false, true} {
		e := newTestEngine(t)
		ctx := context.Background()

		_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
		require.NoError(t, err)
		want := domain.StatusPending
		if approved {
			require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve))
			want = domain.StatusSuccessful
		}

		require.NoError(t, e.RequestWithdraw(ctx, testutil.MarriedApplicant))
		require.NoError(t, e.RejectWithdraw(ctx, testutil.Manager, testutil.MarriedApplicant))

		app := mustApplication(t, e, testutil.MarriedApplicant)
		assert.Equal(t, want, app.Status)
		assert.Empty(t, app.PreviousStatus)
		assert.True(t, app.UnitHeld)
		assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom))
	}
}

func TestWithdraw_Errors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	requireCode(t, e.RequestWithdraw(ctx, testutil.MarriedApplicant), domain.CodeApplicationNotFound)
	requireCode(t, e.ApproveWithdraw(ctx, testutil.Manager, testutil.MarriedApplicant), domain.CodeNoWithdrawalRequest)

	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	requireCode(t, e.RejectWithdraw(ctx, testutil.Manager, testutil.MarriedApplicant), domain.CodeNoWithdrawalRequest)

	require.NoError(t, e.RequestWithdraw(ctx, testutil.MarriedApplicant))
	requireCode(t, e.ApproveWithdraw(ctx, testutil.SecondManager, testutil.MarriedApplicant), domain.CodeNotManaging)
	assert.Equal(t, domain.StatusWithdrawalRequested, status(t, e, testutil.MarriedApplicant))
}

func TestBook(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	approveOfficer(t, e)

	_, err := e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)

	_, err = e.BookFlat(ctx, testutil.Officer, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeNoSuccessfulApplication)

	require.NoError(t, e.ApproveRejectApplication(ctx, testutil.Manager, testutil.MarriedApplicant, testutil.Acacia, domain.Approve))

	_, err = e.BookFlat(ctx, testutil.SecondOfficer, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeNoSuccessfulApplication, "officer without an assignment")

	_, err = e.BookFlat(ctx, testutil.Manager, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeRoleNotPermitted)

	app, err := e.BookFlat(ctx, testutil.Officer, testutil.MarriedApplicant)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, app.Status)
	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom), "booking does not reserve a second unit")

	receipt, err := e.Receipt(testutil.Officer, testutil.MarriedApplicant)
	require.NoError(t, err)
	assert.Equal(t, domain.Receipt{
		ApplicantNRIC: testutil.MarriedApplicant,
		ApplicantName: "Sarah",
		Age:           40,
		MaritalStatus: domain.Married,
		ProjectName:   testutil.Acacia,
		Neighborhood:  "Yishun",
		FlatType:      domain.ThreeRoom,
		Price:         450000,
	}, receipt)

	// Booked applications are final.
	requireCode(t, e.RequestWithdraw(ctx, testutil.MarriedApplicant), domain.CodeInvalidTransition)
	_, err = e.BookFlat(ctx, testutil.Officer, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeNoSuccessfulApplication)
	requireInvariants(t, e)
}

func TestBook_ReservesWhenLoadedWithoutUnit(t *testing.T) {
	snap := testutil.Snapshot()
	snap.Applications = []domain.Application{{
		ApplicantNRIC: testutil.MarriedApplicant,
		ProjectName:   testutil.Acacia,
		FlatType:      domain.ThreeRoom,
		Status:        domain.StatusSuccessful,
	}}
	e := newEngineWith(t, snap)
	approveOfficer(t, e)

	app, err := e.BookFlat(context.Background(), testutil.Officer, testutil.MarriedApplicant)
	require.NoError(t, err)
	assert.True(t, app.UnitHeld)
	assert.Equal(t, 2, remaining(t, e, testutil.Acacia, domain.ThreeRoom))
}

func TestReceipt_Errors(t *testing.T) {
	e := newTestEngine(t)
	approveOfficer(t, e)

	_, err := e.Receipt(testutil.Officer, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeApplicationNotFound)

	_, err = e.Receipt(testutil.SingleApplicant, testutil.MarriedApplicant)
	requireCode(t, err, domain.CodeRoleNotPermitted)
}
