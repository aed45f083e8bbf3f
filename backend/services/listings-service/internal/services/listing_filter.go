package services

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/viraj01032007/setmystay02/backend/services/listings-service/internal/constants"
	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

// DefaultFilterOptions lists the values the browse UI offers.
func DefaultFilterOptions() models.FilterOptions {
	return models.FilterOptions{
		Amenities: []string{
			"AC", "WiFi", "Parking", "Gym", "Pool", "Elevator", "Security",
			"Balcony", "Power Backup", "Meals", "Laundry", "Housekeeping", "Garden",
		},
		Cities: []string{"Navi Mumbai", "Mumbai", "Pune", "Delhi", "Bangalore"},
		Localities: map[string][]string{
			"Navi Mumbai": {"Kharghar", "CBD Belapur", "Vashi", "Nerul"},
			"Mumbai":      {"Andheri", "Bandra", "Dadar"},
			"Pune":        {"Kothrud", "Hinjewadi", "Baner"},
			"Delhi":       {"Saket", "Dwarka", "Rohini"},
			"Bangalore":   {"Koramangala", "Whitefield", "Indiranagar"},
		},
		RentalSizes: []string{"1 BHK", "2 BHK", "3 BHK"},
		RoomTypes:   []string{"Single Room", "Double Sharing", "Triple Sharing"},
		Genders:     []string{"Male", "Female"},
		FurnishedStatuses: []string{
			string(models.FurnishedStatusFurnished),
			string(models.FurnishedStatusSemiFurnished),
			string(models.FurnishedStatusUnfurnished),
		},
		BrokerStatuses: []string{
			string(models.BrokerStatusWithBroker),
			string(models.BrokerStatusWithoutBroker),
		},
		MaxBudget: constants.MaxBudget,
	}
}

// DefaultFilterState is what every category starts from, and what a
// category switch resets to.
func DefaultFilterState() models.FilterState {
	return models.FilterState{
		Budget:          constants.DefaultBudget,
		Amenities:       []string{},
		FurnishedStatus: models.FilterAny,
		PropertyType:    models.FilterAny,
		City:            constants.DefaultCity,
		Locality:        models.FilterAny,
		RoomType:        models.FilterAny,
		Gender:          models.FilterAny,
		LocationQuery:   "",
		BrokerStatus:    models.FilterAny,
	}
}

// FilterStateFromQuery overlays query parameters on the defaults. Amenities
// may be repeated or comma separated. Only a malformed budget is an error.
func FilterStateFromQuery(q url.Values) (models.FilterState, error) {
	fs := DefaultFilterState()

	if raw := strings.TrimSpace(q.Get("budget")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fs, fmt.Errorf("budget must be a non-negative integer, got %q", raw)
		}
		fs.Budget = n
	}

	for _, v := range q["amenities"] {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" && !slices.Contains(fs.Amenities, a) {
				fs.Amenities = append(fs.Amenities, a)
			}
		}
	}

	set := func(dst *string, key string) {
		if _, ok := q[key]; ok {
			*dst = strings.TrimSpace(q.Get(key))
		}
	}
	set(&fs.FurnishedStatus, "furnished_status")
	set(&fs.PropertyType, "property_type")
	set(&fs.City, "city")
	set(&fs.Locality, "locality")
	set(&fs.RoomType, "room_type")
	set(&fs.Gender, "gender")
	set(&fs.LocationQuery, "location_query")
	set(&fs.BrokerStatus, "broker_status")
	return fs, nil
}

// FilterItems keeps the items of category that pass every active predicate,
// preserving input order. Applying it twice gives the same result.
func FilterItems(items []models.Item, fs models.FilterState, category models.Category) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if it.Category() != category {
			continue
		}
		var keep bool
		switch it.Kind {
		case models.ItemKindListing:
			keep = matchListing(it.Listing, fs, category)
		case models.ItemKindRoommate:
			keep = matchRoommate(it.Roommate, fs)
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

func matchListing(l *models.Listing, fs models.FilterState, category models.Category) bool {
	if l.Rent > fs.Budget {
		return false
	}
	if !equalOrAny(fs.FurnishedStatus, string(l.FurnishedStatus)) ||
		!equalOrAny(fs.BrokerStatus, string(l.BrokerStatus)) ||
		!equalOrAny(fs.City, l.City) ||
		!equalOrAny(fs.Locality, l.Locality) {
		return false
	}
	switch category {
	case models.CategoryRental:
		if !equalOrAny(fs.PropertyType, l.Size) {
			return false
		}
	case models.CategoryPG:
		if !equalOrAny(fs.RoomType, l.Size) {
			return false
		}
	}
	for _, a := range fs.Amenities {
		if !slices.Contains(l.Amenities, a) {
			return false
		}
	}
	return true
}

// Roommates are filtered by budget, gender and the free-text location only.
func matchRoommate(r *models.RoommateProfile, fs models.FilterState) bool {
	if r.Rent > fs.Budget {
		return false
	}
	if !equalOrAny(fs.Gender, r.Gender) {
		return false
	}
	if q := strings.ToLower(fs.LocationQuery); q != "" {
		loc := strings.ToLower(r.Locality + ", " + r.City)
		if !strings.Contains(loc, q) {
			return false
		}
	}
	return true
}

// Only the "any" sentinel disables a selector; an empty one matches empty values.
func equalOrAny(want, got string) bool {
	return want == models.FilterAny || want == got
}
