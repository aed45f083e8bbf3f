package utils

import "errors"

/*
   Sentinel errors for listings-service domain logic.
   Services wrap them in *utils.AppError; tests match with errors.Is.
*/
var (
	ErrItemNotFound    = errors.New("item_not_found")
	ErrBedNotFound     = errors.New("bed_not_found")
	ErrBedNotVacant    = errors.New("bed_not_vacant")
	ErrInvalidDates    = errors.New("invalid_dates")
	ErrSuperseded      = errors.New("smart_sort_superseded")
	ErrRankingFailed   = errors.New("ranking_failed")
	ErrAdminStepOrder  = errors.New("admin_step_out_of_order")
	ErrWrongCredential = errors.New("wrong_credential")
	ErrUnknownCategory = errors.New("unknown_category")
)
