package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impulsohub/painel/models"
)

func commissionServiceFor(t *testing.T, handler http.HandlerFunc) *CommissionService {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)
	return NewCommissionService(NewClient(upstream.URL, testLogger()), testLogger())
}

func TestGetTiersFiltersByPartition(t *testing.T) {
	svc := commissionServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/commissions/tiers", r.URL.Path)
		assert.Equal(t, "influencer", r.URL.Query().Get("appliesTo"))
		w.Write([]byte(`[{"minSalesValue":0,"maxSalesValue":999.99,"commissionPercentage":5,"appliesTo":"influencer"},{"minSalesValue":1000,"commissionPercentage":10,"appliesTo":"influencer"}]`))
	})

	result := svc.GetTiers(context.Background(), "tok", models.AppliesToInfluencer, nil)

	require.True(t, result.Success)
	require.Len(t, result.Tiers, 2)
	assert.Equal(t, 5.0, result.Tiers[0].CommissionPercentage)
	require.NotNil(t, result.Tiers[0].MaxSalesValue)
	assert.Nil(t, result.Tiers[1].MaxSalesValue)
}

func TestGetTiersWithoutToken(t *testing.T) {
	svc := commissionServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not reach the network")
	})

	result := svc.GetTiers(context.Background(), "", models.AppliesToInfluencer, nil)

	assert.False(t, result.Success)
	assert.Equal(t, models.MsgUnauthorized, result.Message)
}

func TestSaveTiersBulkStampsPartition(t *testing.T) {
	var gotPayload struct {
		Tiers []models.CommissionTier `json:"tiers"`
	}
	svc := commissionServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/commissions/tiers/bulk", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotPayload))
		// Echo the list back as the canonical version.
		canonical, _ := json.Marshal(gotPayload.Tiers)
		w.Write(canonical)
	})

	max := 999.99
	sent := []models.CommissionTier{
		{MinSalesValue: 0, MaxSalesValue: &max, CommissionPercentage: 5},
		{MinSalesValue: 1000, CommissionPercentage: 10, AppliesTo: "stale"},
	}
	result := svc.SaveTiersBulk(context.Background(), "tok", models.AppliesToManager, sent)

	require.True(t, result.Success)
	require.Len(t, gotPayload.Tiers, 2)
	for _, tier := range gotPayload.Tiers {
		assert.Equal(t, models.AppliesToManager, tier.AppliesTo)
	}
	assert.Len(t, result.Tiers, 2)
}

func TestSaveTiersBulkFailureKeepsMessage(t *testing.T) {
	svc := commissionServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Faixas sobrepostas"}`))
	})

	result := svc.SaveTiersBulk(context.Background(), "tok", models.AppliesToManager, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Faixas sobrepostas", result.Message)
}

func TestGetSalesParsesEnvelope(t *testing.T) {
	svc := commissionServiceFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		w.Write([]byte(`{"sales":[{"total":120.5}],"page":3,"pages":7,"total":65}`))
	})

	result := svc.GetSales(context.Background(), "tok", models.SaleFilters{StartDate: "2026-01-01", Page: 3})

	require.True(t, result.Success)
	assert.JSONEq(t, `[{"total":120.5}]`, string(result.Sales))
	assert.Equal(t, models.Pagination{Page: 3, Pages: 7, Total: 65}, result.Pagination)
}
