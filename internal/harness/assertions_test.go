package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/engine"
	"github.com/roach88/bto/internal/registry"
	"github.com/roach88/bto/internal/testutil"
)

func assertionEngine(t *testing.T) *engine.Engine {
	t.Helper()
	reg, err := registry.New()
	require.NoError(t, err)
	e := engine.New(reg)
	require.NoError(t, e.Load(testutil.Snapshot()))

	ctx := context.Background()
	_, err = e.SubmitApplication(ctx, testutil.MarriedApplicant, testutil.Acacia, domain.ThreeRoom)
	require.NoError(t, err)
	require.NoError(t, e.RegisterOfficer(ctx, testutil.Officer, testutil.Birch))
	require.NoError(t, e.ProcessOfficerRegistration(ctx, testutil.SecondManager, testutil.Officer, testutil.Birch, domain.Approve))
	return e
}

func intPtr(n int) *int { return &n }

func TestEvaluateAssertions_Pass(t *testing.T) {
	e := assertionEngine(t)

	errs := EvaluateAssertions(e, []Assertion{
		{Type: AssertApplicationStatus, Applicant: testutil.MarriedApplicant, Status: "PENDING"},
		{Type: AssertRemainingUnits, Project: testutil.Acacia, FlatType: domain.ThreeRoom, Count: intPtr(2)},
		{Type: AssertOfficerSlots, Project: testutil.Birch, Count: intPtr(1)},
		{Type: AssertOfficerRoster, Project: testutil.Birch, Officers: []string{testutil.Officer}},
		{Type: AssertOfficerRoster, Project: testutil.Acacia},
		{Type: AssertRegistrationStatus, Officer: testutil.Officer, Project: testutil.Birch, Status: "APPROVED"},
		{Type: AssertInvariants},
	}, nil)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Fail(t *testing.T) {
	e := assertionEngine(t)
	trace := []TraceEvent{{Step: 0, Op: "application.submit", Actor: testutil.MarriedApplicant, Outcome: OutcomeOK}}

	tests := []struct {
		name      string
		assertion Assertion
		actual    string
	}{
		{"wrong status", Assertion{Type: AssertApplicationStatus, Applicant: testutil.MarriedApplicant, Status: "BOOKED"}, "PENDING"},
		{"no application", Assertion{Type: AssertApplicationStatus, Applicant: testutil.SingleApplicant, Status: "PENDING"}, "APPLICATION_NOT_FOUND"},
		{"wrong units", Assertion{Type: AssertRemainingUnits, Project: testutil.Acacia, FlatType: domain.ThreeRoom, Count: intPtr(3)}, "2 remaining"},
		{"missing flat type", Assertion{Type: AssertRemainingUnits, Project: testutil.Birch, FlatType: domain.TwoRoom, Count: intPtr(0)}, "flat type not offered"},
		{"missing project", Assertion{Type: AssertOfficerSlots, Project: "Nowhere", Count: intPtr(0)}, "PROJECT_NOT_FOUND"},
		{"wrong roster", Assertion{Type: AssertOfficerRoster, Project: testutil.Birch}, testutil.Officer},
		{"no registration", Assertion{Type: AssertRegistrationStatus, Officer: testutil.SecondOfficer, Project: testutil.Birch, Status: "PENDING"}, "no registration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(e, []Assertion{tt.assertion}, trace)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "Assertion failed: "+tt.assertion.Type)
			assert.Contains(t, errs[0], tt.actual)
			assert.Contains(t, errs[0], "[0] application.submit")
		})
	}
}
