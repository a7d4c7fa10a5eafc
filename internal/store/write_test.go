package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, "run-1", "supervisor"))
	require.NoError(t, s.CreateRun(ctx, "run-1", "other"), "duplicate create is a no-op")

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, Run{ID: "run-1", RootType: "supervisor"}, run)
}

func TestCreateRun_EmptyID(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.CreateRun(context.Background(), "", "x"))
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "supervisor"))

	want := Run{
		ID:       "run-1",
		RootType: "supervisor",
		Reason:   "root_killed",
		Cycles:   11,
		Elapsed:  110 * time.Millisecond,
		Slept:    40 * time.Millisecond,
		Finished: true,
	}
	require.NoError(t, s.FinishRun(ctx, want))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFinishRun_Missing(t *testing.T) {
	s := createTestStore(t)
	err := s.FinishRun(context.Background(), Run{ID: "ghost"})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestAppendRecords_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "listener"))

	want := sampleRecords()
	require.NoError(t, s.AppendRecords(ctx, "run-1", want))

	got, err := s.ReadRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAppendRecords_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, "run-1", "listener"))

	records := sampleRecords()
	require.NoError(t, s.AppendRecords(ctx, "run-1", records[:4]))
	require.NoError(t, s.AppendRecords(ctx, "run-1", records))

	got, err := s.ReadRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, len(records))
}

func TestAppendRecords_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.AppendRecords(context.Background(), "ghost", sampleRecords())
	assert.Error(t, err, "foreign key rejects records without a run")

	got, err := s.ReadRecords(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, got, "transaction rolled back")
}

func TestAppendRecords_Empty(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.AppendRecords(context.Background(), "ghost", nil))
}
