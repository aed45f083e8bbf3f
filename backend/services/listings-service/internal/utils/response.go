package utils

// Error codes specific to listings-service only.
const (
	ErrCodeBedNotVacant = "bed_not_vacant"
	ErrCodeSuperseded   = "superseded"
	ErrCodeStepOrder    = "step_out_of_order"
)
