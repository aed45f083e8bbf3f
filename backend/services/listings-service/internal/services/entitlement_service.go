package services

import (
	"context"
	"net/http"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// EntitlementService scopes EntitlementTrackers to visitors. Every call
// reloads the visitor's state, so several replicas sharing one store behave
// last-write-wins, the same as two browser tabs.
type EntitlementService interface {
	Snapshot(ctx context.Context, visitor string) (models.EntitlementState, error)
	Grant(ctx context.Context, visitor string, plan models.UnlockPlan) (GrantResult, error)
	Consume(ctx context.Context, visitor, itemID string) (ConsumeResult, error)
	IsUnlocked(ctx context.Context, visitor, itemID string) (bool, error)
}

type entitlementService struct {
	kv    repositories.KeyValueStore
	locks *keyedMutex
}

func NewEntitlementService(kv repositories.KeyValueStore) EntitlementService {
	return &entitlementService{kv: kv, locks: newKeyedMutex()}
}

func (s *entitlementService) Snapshot(ctx context.Context, visitor string) (models.EntitlementState, error) {
	var out models.EntitlementState
	err := s.withTracker(ctx, visitor, func(t *EntitlementTracker) error {
		out = t.Snapshot()
		return nil
	})
	return out, err
}

func (s *entitlementService) Grant(ctx context.Context, visitor string, plan models.UnlockPlan) (GrantResult, error) {
	if !plan.Valid() {
		return GrantResult{}, &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    models.ErrInvalidPlan.Error(),
			Err:        models.ErrInvalidPlan,
		}
	}
	var out GrantResult
	err := s.withTracker(ctx, visitor, func(t *EntitlementTracker) error {
		res, err := t.Grant(ctx, plan)
		out = res
		return err
	})
	if err == nil {
		utils.Logger.WithField("visitor", visitor).Infof("granted unlock plan %s", plan)
	}
	return out, err
}

func (s *entitlementService) Consume(ctx context.Context, visitor, itemID string) (ConsumeResult, error) {
	var out ConsumeResult
	err := s.withTracker(ctx, visitor, func(t *EntitlementTracker) error {
		res, err := t.Consume(ctx, itemID)
		out = res
		return err
	})
	return out, err
}

func (s *entitlementService) IsUnlocked(ctx context.Context, visitor, itemID string) (bool, error) {
	var out bool
	err := s.withTracker(ctx, visitor, func(t *EntitlementTracker) error {
		out = t.IsUnlocked(itemID)
		return nil
	})
	return out, err
}

func (s *entitlementService) withTracker(ctx context.Context, visitor string, fn func(*EntitlementTracker) error) error {
	key := visitorKey(visitor)
	unlock := s.locks.Lock(key)
	defer unlock()

	t := NewEntitlementTracker(s.kv, key)
	if err := t.Initialize(ctx); err != nil {
		return storageUnavailable(err)
	}
	if err := fn(t); err != nil {
		return storageUnavailable(err)
	}
	return nil
}

func storageUnavailable(err error) error {
	return &utils.AppError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       utils.ErrCodeInternal,
		Message:    "Entitlement storage unavailable",
		Err:        err,
	}
}
