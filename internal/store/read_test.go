package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/vasp"
)

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t, "zzz", "aaa")
	ctx := context.Background()

	_, err := s.SaveRun(ctx, createTestRun("first"), createTestStates())
	require.NoError(t, err)

	second := createTestRun("second")
	second.Spin = vasp.SpinDown
	second.Reference = ipr.At(-1.5)
	_, err = s.SaveRun(ctx, second, nil)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "zzz", runs[0].ID)
	assert.Equal(t, 4, runs[0].States)
	assert.False(t, runs[0].Reference.Set)

	assert.Equal(t, "aaa", runs[1].ID)
	assert.Equal(t, vasp.SpinDown, runs[1].Spin)
	assert.Equal(t, ipr.At(-1.5), runs[1].Reference)
	assert.Equal(t, 0, runs[1].States)
}

func TestLoadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t, "rt")
	ctx := context.Background()

	in := createTestRun("round trip")
	in.NonFinite = 1
	want := createTestStates()
	_, err := s.SaveRun(ctx, in, want)
	require.NoError(t, err)

	run, got, err := s.LoadRun(ctx, "rt")
	require.NoError(t, err)

	assert.Equal(t, "round trip", run.Name)
	assert.Equal(t, "/data/PROCAR", run.ProcarPath)
	assert.Equal(t, "/data/EIGENVAL", run.EigenvalPath)
	assert.Equal(t, 2, run.NKPoints)
	assert.Equal(t, 1, run.NonFinite)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].KPoint, got[i].KPoint)
		assert.Equal(t, want[i].Band, got[i].Band)
		assert.Equal(t, want[i].Energy, got[i].Energy)
		if math.IsNaN(want[i].IPR) {
			assert.True(t, math.IsNaN(got[i].IPR), "state %d", i)
		} else {
			assert.Equal(t, want[i].IPR, got[i].IPR, "state %d", i)
		}
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.LoadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadStatesInRange(t *testing.T) {
	s := createTestStore(t, "range")
	ctx := context.Background()

	_, err := s.SaveRun(ctx, createTestRun("range"), createTestStates())
	require.NoError(t, err)

	got, err := s.ReadStatesInRange(ctx, "range", -5.5, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, -5.5, got[0].Energy)
	assert.Equal(t, 0.75, got[1].Energy)

	_, err = s.ReadStatesInRange(ctx, "missing", 0, 1)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
