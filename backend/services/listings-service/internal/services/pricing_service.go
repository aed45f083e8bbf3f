package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// PricingService keeps the admin-editable price list in the KV store.
type PricingService struct {
	kv    repositories.KeyValueStore
	audit auditor
}

func NewPricingService(kv repositories.KeyValueStore, auditRepo repositories.AdminAuditLogRepository) *PricingService {
	return &PricingService{kv: kv, audit: auditor{repo: auditRepo}}
}

// Get returns the stored pricing, or the defaults when nothing valid is stored.
func (s *PricingService) Get(ctx context.Context) (models.Pricing, error) {
	raw, found, err := s.kv.Get(ctx, constants.StorageKeyPricing)
	if err != nil {
		return models.Pricing{}, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to load pricing", Err: err}
	}
	if !found {
		return models.DefaultPricing(), nil
	}
	var p models.Pricing
	if jerr := json.Unmarshal([]byte(raw), &p); jerr != nil || validatePricing(p) != nil {
		utils.Logger.Debugf("ignoring malformed stored pricing: %v", jerr)
		return models.DefaultPricing(), nil
	}
	return p, nil
}

// Update replaces the price list after validating it.
func (s *PricingService) Update(ctx context.Context, adminID string, p models.Pricing) (models.Pricing, error) {
	if p.Currency == "" {
		p.Currency = models.DefaultPricing().Currency
	}
	if err := validatePricing(p); err != nil {
		return models.Pricing{}, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: err.Error(), Err: err}
	}

	before, err := s.Get(ctx)
	if err != nil {
		return models.Pricing{}, err
	}
	encoded, err := json.Marshal(p)
	if err != nil {
		return models.Pricing{}, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to encode pricing", Err: err}
	}
	if err := s.kv.Set(ctx, constants.StorageKeyPricing, string(encoded)); err != nil {
		return models.Pricing{}, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to save pricing", Err: err}
	}

	s.audit.log(ctx, adminID, models.AuditUpdatePricing, models.TargetPricing, "pricing", map[string]any{
		"before": before,
		"after":  p,
	})
	return p, nil
}

// ListingFee is the one-off fee for publishing in category.
func (s *PricingService) ListingFee(ctx context.Context, category models.Category) (int, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return p.ListingPlans[category], nil
}

func validatePricing(p models.Pricing) error {
	if len(p.UnlockPlans) == 0 {
		return fmt.Errorf("at least one unlock plan is required")
	}
	seen := make(map[string]struct{}, len(p.UnlockPlans))
	for _, up := range p.UnlockPlans {
		if !up.Plan.Valid() {
			return models.ErrInvalidPlan
		}
		if up.Price < 0 {
			return fmt.Errorf("price for plan %s must not be negative", up.Plan)
		}
		if _, dup := seen[up.Plan.String()]; dup {
			return fmt.Errorf("plan %s is listed twice", up.Plan)
		}
		seen[up.Plan.String()] = struct{}{}
	}
	for _, c := range models.AllCategories {
		price, ok := p.ListingPlans[c]
		if !ok {
			return fmt.Errorf("listing plan for %s is required", c)
		}
		if price < 0 {
			return fmt.Errorf("listing plan for %s must not be negative", c)
		}
	}
	return nil
}
