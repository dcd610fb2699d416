package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/testutil"
)

func sampleSnapshot() domain.Snapshot {
	snap := testutil.Snapshot()
	snap.Applications = []domain.Application{{
		ApplicantNRIC:  testutil.MarriedApplicant,
		ProjectName:    testutil.Acacia,
		FlatType:       domain.ThreeRoom,
		Status:         domain.StatusWithdrawalRequested,
		PreviousStatus: domain.StatusSuccessful,
		UnitHeld:       true,
	}}
	snap.Registrations = []domain.OfficerRegistration{{
		OfficerNRIC: testutil.Officer,
		ProjectName: testutil.Birch,
		Status:      domain.RegistrationPending,
	}}
	snap.Sort()
	return snap
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := sampleSnapshot()

	require.NoError(t, s.SaveSnapshot(ctx, KindHead, 42, snap))

	saved, err := s.LoadSnapshot(ctx, KindHead)
	require.NoError(t, err)
	assert.Equal(t, KindHead, saved.Kind)
	assert.Equal(t, int64(42), saved.Seq)
	assert.Equal(t, snap, saved.Snapshot)

	want, err := snap.Digest()
	require.NoError(t, err)
	assert.Equal(t, want, saved.Digest)
}

func TestSnapshot_Replace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, KindHead, 1, testutil.Snapshot()))
	require.NoError(t, s.SaveSnapshot(ctx, KindHead, 2, sampleSnapshot()))

	saved, err := s.LoadSnapshot(ctx, KindHead)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Seq)
	assert.Len(t, saved.Snapshot.Applications, 1)

	_, err = s.LoadSnapshot(ctx, KindBase)
	assert.ErrorIs(t, err, ErrNoSnapshot, "kinds are independent")
}

func TestSnapshot_UnknownKind(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.SaveSnapshot(context.Background(), "tail", 0, testutil.Snapshot()))
}

func TestSnapshot_DetectsCorruption(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveSnapshot(ctx, KindBase, 0, testutil.Snapshot()))

	_, err := s.db.ExecContext(ctx, `UPDATE snapshots SET body = replace(body, '"Yishun"', '"Woodlands"')`)
	require.NoError(t, err)

	_, err = s.LoadSnapshot(ctx, KindBase)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestSnapshot_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT seq, digest, body FROM snapshots`).
		WithArgs(KindHead).
		WillReturnRows(sqlmock.NewRows([]string{"seq", "digest", "body"}).AddRow(int64(3), "abc", "{not json"))

	_, err = New(db).LoadSnapshot(context.Background(), KindHead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal snapshot")
	assert.NotErrorIs(t, err, ErrNoSnapshot)
	require.NoError(t, mock.ExpectationsWereMet())
}
