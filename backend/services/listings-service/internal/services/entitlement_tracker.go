package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
	"github.com/viraj01032007/setmystay02/backend/shared/go-repositories"
	"github.com/viraj01032007/setmystay02/backend/shared/go-utils"
)

// ConsumeOutcome is the result of spending an unlock on an item.
type ConsumeOutcome string

const (
	ConsumeUnlocked            ConsumeOutcome = "unlocked"
	ConsumeAlreadyUnlocked     ConsumeOutcome = "already_unlocked"
	ConsumeInsufficientCredits ConsumeOutcome = "insufficient_credits"
)

type ConsumeResult struct {
	Outcome     ConsumeOutcome `json:"outcome"`
	Remaining   int            `json:"remaining"`
	IsUnlimited bool           `json:"is_unlimited"`
}

// Succeeded is false only for insufficient credits, which is a normal
// negative answer rather than an error.
func (r ConsumeResult) Succeeded() bool {
	return r.Outcome != ConsumeInsufficientCredits
}

type GrantResult struct {
	Plan    models.UnlockPlan       `json:"plan"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	State   models.EntitlementState `json:"state"`
}

// EntitlementTracker holds one visitor's unlock balance and mirrors every
// change to a KeyValueStore. It is not safe for concurrent use; the
// EntitlementService serialises access per visitor.
type EntitlementTracker struct {
	kv   repositories.KeyValueStore
	keys storageKeys
	log  *logrus.Entry

	count     int
	unlimited bool
	unlocked  map[string]struct{}
	order     []string
}

type storageKeys struct {
	count, unlimited, ids string
}

func keysFor(visitorKey string) storageKeys {
	prefix := constants.StorageKeyPrefix + ":" + visitorKey + ":"
	return storageKeys{
		count:     prefix + constants.StorageKeyUnlocks,
		unlimited: prefix + constants.StorageKeyUnlimited,
		ids:       prefix + constants.StorageKeyUnlockedID,
	}
}

// NewEntitlementTracker returns an empty tracker; call Initialize to load state.
func NewEntitlementTracker(kv repositories.KeyValueStore, visitorKey string) *EntitlementTracker {
	return &EntitlementTracker{
		kv:       kv,
		keys:     keysFor(visitorKey),
		log:      utils.Logger.WithField("visitor", visitorKey),
		unlocked: make(map[string]struct{}),
	}
}

// Initialize loads persisted state. Missing or malformed values fall back to
// 0 / false / empty; only store I/O failures are returned.
func (t *EntitlementTracker) Initialize(ctx context.Context) error {
	t.count, t.unlimited = 0, false
	t.unlocked = make(map[string]struct{})
	t.order = nil

	raw, found, err := t.kv.Get(ctx, t.keys.count)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.keys.count, err)
	}
	if found {
		if n, perr := strconv.Atoi(raw); perr == nil && n >= 0 {
			t.count = n
		} else {
			t.log.Debugf("ignoring malformed unlock count %q", raw)
		}
	}

	raw, found, err = t.kv.Get(ctx, t.keys.unlimited)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.keys.unlimited, err)
	}
	t.unlimited = found && raw == "true"

	raw, found, err = t.kv.Get(ctx, t.keys.ids)
	if err != nil {
		return fmt.Errorf("read %s: %w", t.keys.ids, err)
	}
	if found {
		var ids []string
		if jerr := json.Unmarshal([]byte(raw), &ids); jerr != nil {
			t.log.Debugf("ignoring malformed unlocked id list: %v", jerr)
			ids = nil
		}
		for _, id := range ids {
			t.addUnlocked(id)
		}
	}
	return nil
}

// Grant applies a purchased plan. Unlimited is idempotent; credits add up
// and saturate at math.MaxInt.
func (t *EntitlementTracker) Grant(ctx context.Context, plan models.UnlockPlan) (GrantResult, error) {
	if !plan.Unlimited && plan.Credits <= 0 {
		return GrantResult{}, models.ErrInvalidPlan
	}

	count, unlimited := t.count, t.unlimited
	switch {
	case plan.Unlimited:
		unlimited = true
	case plan.Credits > math.MaxInt-count:
		count = math.MaxInt
	default:
		count += plan.Credits
	}

	if err := t.kv.Set(ctx, t.keys.count, strconv.Itoa(count)); err != nil {
		return GrantResult{}, err
	}
	if err := t.kv.Set(ctx, t.keys.unlimited, strconv.FormatBool(unlimited)); err != nil {
		return GrantResult{}, err
	}
	t.count, t.unlimited = count, unlimited

	msg := fmt.Sprintf("You've added %d unlocks.", plan.Credits)
	if plan.Unlimited {
		msg = "You've subscribed to unlimited unlocks for one month."
	}
	return GrantResult{
		Plan:    plan,
		Title:   "Purchase Successful!",
		Message: msg,
		State:   t.Snapshot(),
	}, nil
}

// Consume spends one unlock on itemID. The id list is written before the
// count so a failed second write never charges for an unlock not recorded.
func (t *EntitlementTracker) Consume(ctx context.Context, itemID string) (ConsumeResult, error) {
	if t.IsUnlocked(itemID) {
		return ConsumeResult{Outcome: ConsumeAlreadyUnlocked, Remaining: t.count, IsUnlimited: t.unlimited}, nil
	}
	if !t.unlimited && t.count <= 0 {
		return ConsumeResult{Outcome: ConsumeInsufficientCredits, Remaining: 0}, nil
	}

	ids := append(append([]string(nil), t.order...), itemID)
	encoded, err := json.Marshal(ids)
	if err != nil {
		return ConsumeResult{}, err
	}
	if err := t.kv.Set(ctx, t.keys.ids, string(encoded)); err != nil {
		return ConsumeResult{}, err
	}
	t.addUnlocked(itemID)

	if !t.unlimited {
		if err := t.kv.Set(ctx, t.keys.count, strconv.Itoa(t.count-1)); err != nil {
			return ConsumeResult{}, err
		}
		t.count--
	}
	return ConsumeResult{Outcome: ConsumeUnlocked, Remaining: t.count, IsUnlimited: t.unlimited}, nil
}

// IsUnlocked is a pure membership test; unlocks are permanent.
func (t *EntitlementTracker) IsUnlocked(itemID string) bool {
	_, ok := t.unlocked[itemID]
	return ok
}

func (t *EntitlementTracker) Snapshot() models.EntitlementState {
	return models.EntitlementState{
		Count:       t.count,
		IsUnlimited: t.unlimited,
		UnlockedIDs: append([]string{}, t.order...),
	}
}

func (t *EntitlementTracker) addUnlocked(id string) {
	if id == "" {
		return
	}
	if _, dup := t.unlocked[id]; dup {
		return
	}
	t.unlocked[id] = struct{}{}
	t.order = append(t.order, id)
}
