package models

type UnlockPlanPrice struct {
	Plan  UnlockPlan `json:"plan"`
	Label string     `json:"label"`
	Price int        `json:"price"`
}

// Pricing is the admin-editable price list, in whole rupees.
type Pricing struct {
	Currency     string            `json:"currency"`
	UnlockPlans  []UnlockPlanPrice `json:"unlock_plans"`
	ListingPlans map[Category]int  `json:"listing_plans"`
}

func DefaultPricing() Pricing {
	return Pricing{
		Currency: "INR",
		UnlockPlans: []UnlockPlanPrice{
			{Plan: PlanOne, Label: "1 Unlock", Price: 49},
			{Plan: PlanFive, Label: "5 Unlocks", Price: 199},
			{Plan: PlanTen, Label: "10 Unlocks", Price: 399},
			{Plan: PlanUnlimited, Label: "Unlimited (1 month)", Price: 999},
		},
		ListingPlans: map[Category]int{
			CategoryRoommate: 149,
			CategoryPG:       349,
			CategoryRental:   999,
		},
	}
}
