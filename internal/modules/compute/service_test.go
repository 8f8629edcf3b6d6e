package compute

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/phasespace/internal/modules/charts"
	"github.com/aristath/phasespace/internal/modules/distribution"
	"github.com/aristath/phasespace/internal/modules/snapshots"
	"github.com/aristath/phasespace/internal/modules/states"
	testingpkg "github.com/aristath/phasespace/internal/testing"
)

// MockStore is a mock snapshot store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(s *snapshots.Snapshot) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockStore) Get(id string) (*snapshots.Snapshot, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshots.Snapshot), args.Error(1)
}

func (m *MockStore) GetRaw(id string) ([]byte, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) List(limit int) ([]snapshots.Summary, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]snapshots.Summary), args.Error(1)
}

func testLogger() zerolog.Logger {
	return testingpkg.NopLogger()
}

func setupTestService(t *testing.T, limits Limits) *Service {
	t.Helper()
	db := testingpkg.NewTestDB(t, "snapshots")
	return NewService(snapshots.NewRepository(db.Conn(), testLogger()), limits, testLogger())
}

func smallParams() Params {
	return Params{
		Extent: &distribution.Extent{{Min: -3, Max: 3}, {Min: -3, Max: 3}},
		Steps:  31,
	}
}

func TestService_ComputeWignerVacuum(t *testing.T) {
	svc := setupTestService(t, Limits{TTL: time.Hour})

	snap, err := svc.Compute(KindWigner, Request{
		Params: smallParams(),
		State:  states.Spec{Preset: states.PresetVacuum, N: 4},
	})
	require.NoError(t, err)
	require.NotEmpty(t, snap.ID)
	require.NotNil(t, snap.ExpiresAt)

	stored, err := svc.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, KindWigner, stored.Kind)
	assert.Equal(t, []int{31, 31}, stored.Grid.Shape())
	assert.Equal(t, []string{distribution.LabelReAlpha, distribution.LabelImAlpha}, stored.Grid.Labels())
	// Centre sample is the origin: W(0,0) = 1/π for the vacuum.
	assert.InDelta(t, 1/math.Pi, stored.Grid.At(15, 15), 1e-9)
	assert.Equal(t, "vacuum", stored.Params["preset"])
}

func TestService_ComputeQuadratureAndReduce(t *testing.T) {
	svc := setupTestService(t, Limits{})
	p := smallParams()
	p.Theta1 = 0.3

	snap, err := svc.Compute(KindQuadrature, Request{
		Params: p,
		State:  states.Spec{Preset: states.PresetTwoModeSqueezed, N: 6, R: 0.4},
	})
	require.NoError(t, err)
	assert.Nil(t, snap.ExpiresAt)
	assert.Equal(t, distribution.QuadratureLabel(1, 0.3), snap.Grid.AxisLabel(0))

	marginal, err := svc.Reduce(snap.ID, OpMarginal, 1)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, marginal.ParentID)
	assert.Equal(t, 1, marginal.Grid.Rank())
	assert.Equal(t, []string{snap.Grid.AxisLabel(0)}, marginal.Grid.Labels())

	projected, err := svc.Reduce(marginal.ID, OpProject, 0)
	require.NoError(t, err)
	v, err := projected.Grid.Scalar()
	require.NoError(t, err)
	assert.Equal(t, floats.Max(marginal.Grid.Data()), v)

	_, err = svc.Reduce(snap.ID, OpMarginal, 2)
	assert.ErrorIs(t, err, distribution.ErrInvalidAxis)
	_, err = svc.Reduce(snap.ID, "sum", 0)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestService_ComputeErrors(t *testing.T) {
	svc := setupTestService(t, Limits{MaxSteps: 50, MaxTruncation: 8, MaxHilbertDim: 36})

	tests := []struct {
		name string
		kind string
		req  Request
		want error
	}{
		{"unknown kind", "p-function", Request{State: states.Spec{Preset: states.PresetVacuum, N: 2}}, ErrUnknownKind},
		{"too many steps", KindWigner, Request{Params: Params{Steps: 51}, State: states.Spec{Preset: states.PresetVacuum, N: 2}}, ErrLimitExceeded},
		{"truncation", KindWigner, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetVacuum, N: 9}}, ErrLimitExceeded},
		{"joint dimension wigner", KindWigner, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetTwoModeSqueezed, N: 8}}, ErrLimitExceeded},
		{"joint dimension qfunc", KindQFunc, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetVacuum, N: 7, Modes: 2}}, ErrLimitExceeded},
		{"three raw modes", KindWigner, Request{Params: smallParams(), State: states.Spec{Dims: []int{2, 2, 2}, Amplitudes: make([]states.Complex, 8)}}, ErrLimitExceeded},
		{"single mode quadrature", KindQuadrature, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetVacuum, N: 3}}, distribution.ErrNotTwoMode},
		{"mismatched modes", KindQuadrature, Request{Params: smallParams(), State: states.Spec{
			Dims:       []int{2, 3},
			Amplitudes: []states.Complex{{Re: 1}, {}, {}, {}, {}, {}},
		}}, distribution.ErrMismatchedModeTruncation},
		{"mixed state quadrature", KindQuadrature, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetThermal, N: 3}}, states.ErrMixedState},
		{"bad extent", KindQFunc, Request{Params: Params{Extent: &distribution.Extent{{Min: 1, Max: 1}, {Min: 0, Max: 1}}}, State: states.Spec{Preset: states.PresetVacuum, N: 2}}, distribution.ErrInvalidExtent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compute(tt.kind, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := svc.List(10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_JointDimensionWithinLimits(t *testing.T) {
	svc := setupTestService(t, Limits{MaxTruncation: 8, MaxHilbertDim: 36})

	snap, err := svc.Compute(KindWigner, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetTwoModeSqueezed, N: 6, R: 0.3}})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Grid.Rank())

	// The quadrature kind never builds the joint density operator.
	_, err = svc.Compute(KindQuadrature, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetTwoModeSqueezed, N: 8, R: 0.3}})
	require.NoError(t, err)
}

func TestService_Chart(t *testing.T) {
	svc := setupTestService(t, Limits{})
	snap, err := svc.Compute(KindQFunc, Request{
		Params: smallParams(),
		State:  states.Spec{Preset: states.PresetThermal, N: 10, NBar: 0.5},
	})
	require.NoError(t, err)

	c, err := svc.Chart(snap.ID, charts.StyleSurface)
	require.NoError(t, err)
	assert.Equal(t, charts.StyleSurface, c.Type)
	assert.Len(t, c.X, 7)

	_, err = svc.Chart("missing", charts.StyleColormap)
	assert.ErrorIs(t, err, snapshots.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc := setupTestService(t, Limits{})
	snap, err := svc.Compute(KindWigner, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetFock, N: 3, Fock: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(snap.ID))
	assert.ErrorIs(t, svc.Delete(snap.ID), snapshots.ErrNotFound)
}

func TestService_StoreFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Save", mock.AnythingOfType("*snapshots.Snapshot")).Return(errors.New("disk full"))
	svc := NewService(store, Limits{}, testLogger())

	_, err := svc.Compute(KindWigner, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetVacuum, N: 2}})
	assert.ErrorContains(t, err, "disk full")
	store.AssertExpectations(t)
}

func TestService_ReduceMissingParent(t *testing.T) {
	store := new(MockStore)
	store.On("Get", "nope").Return(nil, snapshots.ErrNotFound)
	svc := NewService(store, Limits{}, testLogger())

	_, err := svc.Reduce("nope", OpMarginal, 0)
	assert.ErrorIs(t, err, snapshots.ErrNotFound)
	store.AssertNotCalled(t, "Save", mock.Anything)
}

func TestSession_SuccessiveUpdates(t *testing.T) {
	svc := NewService(new(MockStore), Limits{DefaultSteps: 21}, testLogger())
	sess, err := svc.NewSession(KindWigner, Params{})
	require.NoError(t, err)
	assert.Equal(t, KindWigner, sess.Kind())
	assert.False(t, sess.Grid().HasData())

	first, err := sess.Update(states.Spec{Preset: states.PresetVacuum, N: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{21, 21}, first.Shape())
	before := first.Data()

	second, err := sess.Update(states.Spec{Preset: states.PresetFock, N: 3, Fock: 1})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, before, first.Data())
	assert.InDelta(t, -1/math.Pi, second.At(10, 10), 1e-9)
}

func TestService_GetRawDecodesToStoredGrid(t *testing.T) {
	svc := setupTestService(t, Limits{})
	snap, err := svc.Compute(KindQFunc, Request{Params: smallParams(), State: states.Spec{Preset: states.PresetCoherent, N: 12, Alpha: states.Complex{Re: 0.5}}})
	require.NoError(t, err)

	raw, err := svc.GetRaw(snap.ID)
	require.NoError(t, err)
	g, err := snapshots.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, snap.Grid.Shape(), g.Shape())
	assert.Equal(t, snap.Grid.Data(), g.Data())

	_, err = svc.GetRaw("missing")
	assert.ErrorIs(t, err, snapshots.ErrNotFound)
}
