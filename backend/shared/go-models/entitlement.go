package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EntitlementState is one visitor's unlock balance. When IsUnlimited is set
// Count is still tracked for display but no longer gates anything.
type EntitlementState struct {
	Count       int      `json:"count"`
	IsUnlimited bool     `json:"is_unlimited"`
	UnlockedIDs []string `json:"unlocked_ids"`
}

// UnlockPlan is either a positive credit amount or the unlimited subscription.
type UnlockPlan struct {
	Credits   int
	Unlimited bool
}

var (
	PlanOne       = UnlockPlan{Credits: 1}
	PlanFive      = UnlockPlan{Credits: 5}
	PlanTen       = UnlockPlan{Credits: 10}
	PlanUnlimited = UnlockPlan{Unlimited: true}
)

const unlimitedToken = "unlimited"

// MaxPlanCredits bounds a single credit grant.
const MaxPlanCredits = 10000

var ErrInvalidPlan = errors.New("unlock plan must be a positive integer up to 10000 or \"unlimited\"")

// ParseUnlockPlan accepts "unlimited" or a positive integer.
func ParseUnlockPlan(s string) (UnlockPlan, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, unlimitedToken) {
		return PlanUnlimited, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > MaxPlanCredits {
		return UnlockPlan{}, ErrInvalidPlan
	}
	return UnlockPlan{Credits: n}, nil
}

func (p UnlockPlan) Valid() bool {
	return p.Unlimited || (p.Credits > 0 && p.Credits <= MaxPlanCredits)
}

func (p UnlockPlan) String() string {
	if p.Unlimited {
		return unlimitedToken
	}
	return strconv.Itoa(p.Credits)
}

// MarshalJSON writes a number, or the string "unlimited".
func (p UnlockPlan) MarshalJSON() ([]byte, error) {
	if p.Unlimited {
		return json.Marshal(unlimitedToken)
	}
	return json.Marshal(p.Credits)
}

func (p *UnlockPlan) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 || n > MaxPlanCredits {
			return ErrInvalidPlan
		}
		*p = UnlockPlan{Credits: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, string(data))
	}
	parsed, err := ParseUnlockPlan(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
