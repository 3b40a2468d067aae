package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaspipr/internal/ipr"
)

func TestSaveRun_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t, "run-a", "run-b")
	ctx := context.Background()

	first, err := s.SaveRun(ctx, createTestRun("first"), createTestStates())
	require.NoError(t, err)
	assert.Equal(t, "run-a", first.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, 4, first.States)

	second, err := s.SaveRun(ctx, createTestRun("second"), nil)
	require.NoError(t, err)
	assert.Equal(t, "run-b", second.ID)
	assert.Equal(t, int64(2), second.Seq)
}

func TestSaveRun_KeepsExplicitID(t *testing.T) {
	s := createTestStore(t)

	run := createTestRun("explicit")
	run.ID = "my-id"
	saved, err := s.SaveRun(context.Background(), run, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-id", saved.ID)
}

func TestSaveRun_DefaultIDIsUUIDv7(t *testing.T) {
	s := createTestStore(t)

	saved, err := s.SaveRun(context.Background(), createTestRun("uuid"), nil)
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, byte('7'), saved.ID[14], "version nibble")
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	s := createTestStore(t, "dup", "dup")
	ctx := context.Background()

	_, err := s.SaveRun(ctx, createTestRun("one"), createTestStates())
	require.NoError(t, err)

	_, err = s.SaveRun(ctx, createTestRun("two"), createTestStates())
	require.Error(t, err)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM states").Scan(&count))
	assert.Equal(t, 4, count, "failed save must not leave states behind")
}

func TestSaveRun_InvalidSpinRejected(t *testing.T) {
	s := createTestStore(t)

	run := createTestRun("bad spin")
	run.Spin = 0
	_, err := s.SaveRun(context.Background(), run, nil)
	assert.Error(t, err)
}

func TestSaveRun_NonFiniteValues(t *testing.T) {
	s := createTestStore(t, "nf")
	ctx := context.Background()

	states := []ipr.State{
		{Energy: -1, IPR: math.Inf(1)},
		{Energy: 0, IPR: math.NaN()},
	}
	_, err := s.SaveRun(ctx, createTestRun("nf"), states)
	require.NoError(t, err)

	_, got, err := s.LoadRun(ctx, "nf")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, math.IsInf(got[0].IPR, 1))
	assert.True(t, math.IsNaN(got[1].IPR))
}

func TestDeleteRun(t *testing.T) {
	s := createTestStore(t, "gone")
	ctx := context.Background()

	_, err := s.SaveRun(ctx, createTestRun("gone"), createTestStates())
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, "gone"))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM states").Scan(&count))
	assert.Equal(t, 0, count, "states must cascade")

	err = s.DeleteRun(ctx, "gone")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
