package dtos

import "github.com/viraj01032007/setmystay02/backend/shared/go-models"

type DefaultFiltersResponse struct {
	Category models.Category      `json:"category"`
	Filters  models.FilterState   `json:"filters"`
	Options  models.FilterOptions `json:"options"`
}

// SmartSortRequest carries filters in the body; absent fields keep their
// defaults. Empty texts are derived server side.
type SmartSortRequest struct {
	Filters         models.FilterState `json:"filters"`
	UserPreferences string             `json:"user_preferences" validate:"max=500"`
	ViewingPatterns string             `json:"viewing_patterns" validate:"max=500"`
}

type GrantRequest struct {
	Plan models.UnlockPlan `json:"plan"`
}

type BookingInquiryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Email     string `json:"email" validate:"omitempty,email"`
}

type BookingInquiryResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SubmissionRequest is the list-your-property form. Fields the short form
// does not ask for are optional and fall back to defaults.
type SubmissionRequest struct {
	PropertyType            string   `json:"property_type" validate:"required,oneof=PG Rental Roommate"`
	Title                   string   `json:"title" validate:"required_unless=PropertyType Roommate,max=120"`
	Rent                    int      `json:"rent" validate:"required,gt=0,max=10000000"`
	City                    string   `json:"city" validate:"required,max=80"`
	Locality                string   `json:"locality" validate:"required,max=80"`
	Address                 string   `json:"address" validate:"required,max=300"`
	OwnerName               string   `json:"owner_name" validate:"required,max=100"`
	Phone                   string   `json:"phone" validate:"required,max=20"`
	Email                   string   `json:"email" validate:"omitempty,email"`
	Description             string   `json:"description" validate:"required,max=2000"`
	Amenities               []string `json:"amenities" validate:"max=20,dive,required,max=40"`
	BrokerStatus            string   `json:"broker_status" validate:"omitempty,oneof='With Broker' 'Without Broker'"`
	FurnishedStatus         string   `json:"furnished_status" validate:"omitempty,oneof=Furnished Semi-Furnished Unfurnished"`
	Size                    string   `json:"size" validate:"omitempty,max=40"`
	Area                    int      `json:"area" validate:"omitempty,gt=0"`
	Images                  []string `json:"images" validate:"max=10,dive,url"`
	VideoURL                string   `json:"video_url" validate:"omitempty,url"`
	BedCount                int      `json:"bed_count" validate:"omitempty,min=0,max=50"`
	Age                     int      `json:"age" validate:"omitempty,min=18,max=100"`
	Gender                  string   `json:"gender" validate:"omitempty,oneof=Male Female Any"`
	Preferences             []string `json:"preferences" validate:"max=20,dive,required,max=60"`
	VerificationDocumentURL string   `json:"verification_document_url" validate:"omitempty,url"`
}

type SubmissionResponse struct {
	Item     models.Item             `json:"item"`
	Status   models.ModerationStatus `json:"status"`
	Fee      int                     `json:"fee"`
	Currency string                  `json:"currency"`
	Title    string                  `json:"title"`
	Message  string                  `json:"message"`
}
