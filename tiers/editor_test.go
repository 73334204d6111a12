package tiers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impulsohub/painel/models"
)

type fakeStore struct {
	loaded    []models.CommissionTier
	loadErr   error
	replaced  []models.CommissionTier
	replaceFn func(tiers []models.CommissionTier) ([]models.CommissionTier, error)
	calls     int
}

func (f *fakeStore) Load(ctx context.Context, partition string) ([]models.CommissionTier, error) {
	return f.loaded, f.loadErr
}

func (f *fakeStore) Replace(ctx context.Context, partition string, tiers []models.CommissionTier) ([]models.CommissionTier, error) {
	f.calls++
	f.replaced = tiers
	if f.replaceFn != nil {
		return f.replaceFn(tiers)
	}
	return tiers, nil
}

func ptr(v float64) *float64 { return &v }

func twoTiers() []models.CommissionTier {
	return []models.CommissionTier{
		{MinSalesValue: 0, MaxSalesValue: ptr(999.99), CommissionPercentage: 5},
		{MinSalesValue: 1000, CommissionPercentage: 10},
	}
}

func TestAddSeedsEmptyList(t *testing.T) {
	e := NewEditor(models.AppliesToManager, &fakeStore{})

	require.NoError(t, e.Add(0))

	got := e.Tiers()
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].MinSalesValue)
	assert.Nil(t, got[0].MaxSalesValue)
	assert.Equal(t, 0.0, got[0].CommissionPercentage)
}

func TestAddClosesPreviousTier(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	require.NoError(t, e.Add(2000))

	got := e.Tiers()
	require.Len(t, got, 3)
	require.NotNil(t, got[1].MaxSalesValue)
	assert.InDelta(t, 1999.99, *got[1].MaxSalesValue, 1e-9)
	assert.Equal(t, 2000.0, got[2].MinSalesValue)
	assert.Nil(t, got[2].MaxSalesValue)
	assert.Equal(t, 0.0, got[2].CommissionPercentage)
	assert.NoError(t, e.Validate())
}

func TestAddRejectsWithoutMutating(t *testing.T) {
	cases := []struct {
		name string
		min  float64
	}{
		{"equal to last minimum", 1000},
		{"below last minimum", 500},
		{"negative", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())
			before := e.Tiers()

			err := e.Add(tc.min)

			require.Error(t, err)
			assert.Equal(t, before, e.Tiers())
		})
	}
}

func TestAddInputRejectsNonNumeric(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	err := e.AddInput("abc")

	assert.ErrorIs(t, err, ErrInvalidMinimum)
	assert.Len(t, e.Tiers(), 2)
}

func TestRemoveSingleTierRejected(t *testing.T) {
	e := NewEditorWith(models.AppliesToManager, &fakeStore{}, []models.CommissionTier{
		{MinSalesValue: 0, CommissionPercentage: 5},
	})

	err := e.Remove(0)

	assert.ErrorIs(t, err, ErrLastTierRequired)
	assert.Len(t, e.Tiers(), 1)
}

func TestRemoveLastReopensPredecessor(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	require.NoError(t, e.Remove(1))

	got := e.Tiers()
	require.Len(t, got, 1)
	assert.Nil(t, got[0].MaxSalesValue)
}

func TestRemoveMiddleRederivesBounds(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, []models.CommissionTier{
		{MinSalesValue: 0, MaxSalesValue: ptr(999.99), CommissionPercentage: 5},
		{MinSalesValue: 1000, MaxSalesValue: ptr(1999.99), CommissionPercentage: 10},
		{MinSalesValue: 2000, CommissionPercentage: 15},
	})

	require.NoError(t, e.Remove(1))

	got := e.Tiers()
	require.Len(t, got, 2)
	assert.InDelta(t, 1000.0, got[1].MinSalesValue, 1e-9)
	assert.Nil(t, got[1].MaxSalesValue)
	assert.NoError(t, e.Validate())
}

func TestSetMaxPropagatesNextMinimum(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	require.NoError(t, e.SetMax(0, 1499.99))

	got := e.Tiers()
	assert.InDelta(t, 1500.0, got[1].MinSalesValue, 1e-9)
	assert.NoError(t, e.Validate())
}

func TestSetMinOnlyFirstRow(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	assert.ErrorIs(t, e.SetMin(1, 1200), ErrMinNotEditable)
	assert.NoError(t, e.SetMin(0, 10))
	assert.Equal(t, 10.0, e.Tiers()[0].MinSalesValue)
}

func TestSetMaxRejectedOnLastTier(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, twoTiers())

	assert.ErrorIs(t, e.SetMax(1, 5000), ErrMaxOnLastTier)
}

func TestAddStaysValidAtLargeBounds(t *testing.T) {
	// Around 1e12 a float64 ulp exceeds any fixed epsilon, so the derived
	// max+0.01 lower bound no longer lands exactly one cent away. A list the
	// editor itself produced must still validate.
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, []models.CommissionTier{
		{MinSalesValue: 0, CommissionPercentage: 5},
	})

	require.NoError(t, e.Add(1e12))
	require.NoError(t, e.Validate())

	require.NoError(t, e.SetMax(0, 2e12-1))
	assert.NoError(t, e.Validate())
}

func TestValidateStillCatchesRealGapsAtLargeBounds(t *testing.T) {
	e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, []models.CommissionTier{
		{MinSalesValue: 0, MaxSalesValue: ptr(1e12), CommissionPercentage: 5},
		{MinSalesValue: 1e12 + 1, CommissionPercentage: 10},
	})

	assert.Error(t, e.Validate())
}

func TestValidateCatchesBrokenShapes(t *testing.T) {
	cases := []struct {
		name  string
		tiers []models.CommissionTier
	}{
		{"empty", nil},
		{"closed last tier", []models.CommissionTier{
			{MinSalesValue: 0, MaxSalesValue: ptr(100), CommissionPercentage: 5},
		}},
		{"inverted bounds", []models.CommissionTier{
			{MinSalesValue: 100, MaxSalesValue: ptr(50), CommissionPercentage: 5},
			{MinSalesValue: 50.01, CommissionPercentage: 10},
		}},
		{"gap between tiers", []models.CommissionTier{
			{MinSalesValue: 0, MaxSalesValue: ptr(100), CommissionPercentage: 5},
			{MinSalesValue: 500, CommissionPercentage: 10},
		}},
		{"overlap between tiers", []models.CommissionTier{
			{MinSalesValue: 0, MaxSalesValue: ptr(100), CommissionPercentage: 5},
			{MinSalesValue: 50, CommissionPercentage: 10},
		}},
		{"percentage above 100", []models.CommissionTier{
			{MinSalesValue: 0, CommissionPercentage: 120},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEditorWith(models.AppliesToInfluencer, &fakeStore{}, tc.tiers)
			assert.Error(t, e.Validate())
		})
	}
}

func TestLoadThenSubmitRoundTrip(t *testing.T) {
	store := &fakeStore{loaded: twoTiers()}
	e := NewEditor(models.AppliesToInfluencer, store)

	require.NoError(t, e.Load(context.Background()))
	require.NoError(t, e.Submit(context.Background()))

	require.Len(t, store.replaced, 2)
	assert.Equal(t, 0.0, store.replaced[0].MinSalesValue)
	assert.InDelta(t, 999.99, *store.replaced[0].MaxSalesValue, 1e-9)
	assert.Equal(t, 1000.0, store.replaced[1].MinSalesValue)
	assert.Nil(t, store.replaced[1].MaxSalesValue)
}

func TestSubmitAdoptsCanonicalResponse(t *testing.T) {
	store := &fakeStore{
		replaceFn: func(tiers []models.CommissionTier) ([]models.CommissionTier, error) {
			out := append([]models.CommissionTier(nil), tiers...)
			for i := range out {
				out[i].ID = "srv-1"
			}
			return out, nil
		},
	}
	e := NewEditorWith(models.AppliesToInfluencer, store, twoTiers())

	require.NoError(t, e.Submit(context.Background()))

	for _, tier := range e.Tiers() {
		assert.Equal(t, "srv-1", tier.ID)
	}
}

func TestSubmitFailureKeepsLocalState(t *testing.T) {
	store := &fakeStore{
		replaceFn: func([]models.CommissionTier) ([]models.CommissionTier, error) {
			return nil, errors.New("Faixas inválidas segundo o servidor")
		},
	}
	e := NewEditorWith(models.AppliesToInfluencer, store, twoTiers())

	err := e.Submit(context.Background())

	require.EqualError(t, err, "Faixas inválidas segundo o servidor")
	assert.Len(t, e.Tiers(), 2)

	// Recoverable: a corrected retry goes through.
	store.replaceFn = nil
	assert.NoError(t, e.Submit(context.Background()))
}

func TestSubmitRejectsInvalidListBeforeNetwork(t *testing.T) {
	store := &fakeStore{}
	e := NewEditorWith(models.AppliesToInfluencer, store, []models.CommissionTier{
		{MinSalesValue: 0, MaxSalesValue: ptr(100), CommissionPercentage: 5},
		{MinSalesValue: 500, CommissionPercentage: 10},
	})

	require.Error(t, e.Submit(context.Background()))
	assert.Zero(t, store.calls)
}

func TestLoadFailureLeavesListEmpty(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("Falha ao obter faixas de comissão")}
	e := NewEditor(models.AppliesToManager, store)

	require.Error(t, e.Load(context.Background()))
	assert.Empty(t, e.Tiers())

	// An empty manager partition still accepts its seed tier.
	require.NoError(t, e.Add(0))
	assert.NoError(t, e.Validate())
}
