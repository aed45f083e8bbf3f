package dtos

import "github.com/viraj01032007/setmystay02/backend/shared/go-models"

type AdminPasswordRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

type AdminPINRequest struct {
	StepToken string `json:"step_token" validate:"required"`
	PIN       string `json:"pin" validate:"required,max=32"`
}

type AdminAnswerRequest struct {
	StepToken string `json:"step_token" validate:"required"`
	Answer    string `json:"answer" validate:"required,max=200"`
}

// AdminStepResponse names the next factor, or carries the access token once
// all three passed.
type AdminStepResponse struct {
	NextStep    string `json:"next_step,omitempty"`
	Question    string `json:"question,omitempty"`
	StepToken   string `json:"step_token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

type ModerationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type PendingResponse struct {
	Listings  []*models.Listing         `json:"listings"`
	Roommates []*models.RoommateProfile `json:"roommates"`
	Count     int                       `json:"count"`
}

type PricingRequest struct {
	Currency     string                   `json:"currency" validate:"omitempty,len=3"`
	UnlockPlans  []models.UnlockPlanPrice `json:"unlock_plans" validate:"required,min=1,dive"`
	ListingPlans map[models.Category]int  `json:"listing_plans" validate:"required"`
}
