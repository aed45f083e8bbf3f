package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

func TestPricingDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	p, err := f.pricing.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPricing(), p)

	fee, err := f.pricing.ListingFee(ctx, models.CategoryPG)
	require.NoError(t, err)
	assert.Equal(t, 349, fee)

	next := models.DefaultPricing()
	next.Currency = ""
	next.ListingPlans[models.CategoryPG] = 299
	next.UnlockPlans[0].Price = 39

	saved, err := f.pricing.Update(ctx, "admin", next)
	require.NoError(t, err)
	assert.Equal(t, "INR", saved.Currency)

	got, err := f.pricing.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 299, got.ListingPlans[models.CategoryPG])
	assert.Equal(t, 39, got.UnlockPlans[0].Price)

	entries, err := f.audit.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditUpdatePricing, entries[0].Action)
}

func TestPricingValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)

	cases := map[string]func(*models.Pricing){
		"no plans":         func(p *models.Pricing) { p.UnlockPlans = nil },
		"negative price":   func(p *models.Pricing) { p.UnlockPlans[1].Price = -1 },
		"duplicate plan":   func(p *models.Pricing) { p.UnlockPlans[1].Plan = p.UnlockPlans[0].Plan },
		"zero credit plan": func(p *models.Pricing) { p.UnlockPlans[0].Plan = models.UnlockPlan{} },
		"missing category": func(p *models.Pricing) { delete(p.ListingPlans, models.CategoryRental) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := models.DefaultPricing()
			mutate(&p)
			_, err := f.pricing.Update(ctx, "admin", p)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		})
	}

	got, err := f.pricing.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPricing(), got)
}

func TestPricingIgnoresCorruptStoredValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	require.NoError(t, f.kv.Set(ctx, constants.StorageKeyPricing, `{"currency":"INR"}`))

	got, err := f.pricing.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPricing(), got)
}
