package models

// FilterAny disables an equality predicate.
const FilterAny = "any"

// FilterState holds the browse filters a visitor picked.
type FilterState struct {
	Budget          int      `json:"budget"`
	Amenities       []string `json:"amenities"`
	FurnishedStatus string   `json:"furnished_status"`
	PropertyType    string   `json:"property_type"`
	City            string   `json:"city"`
	Locality        string   `json:"locality"`
	RoomType        string   `json:"room_type"`
	Gender          string   `json:"gender"`
	LocationQuery   string   `json:"location_query"`
	BrokerStatus    string   `json:"broker_status"`
}

// FilterOptions are the values offered for each filter.
type FilterOptions struct {
	Amenities         []string            `json:"amenities"`
	Cities            []string            `json:"cities"`
	Localities        map[string][]string `json:"localities"`
	RentalSizes       []string            `json:"rental_sizes"`
	RoomTypes         []string            `json:"room_types"`
	Genders           []string            `json:"genders"`
	FurnishedStatuses []string            `json:"furnished_statuses"`
	BrokerStatuses    []string            `json:"broker_statuses"`
	MaxBudget         int                 `json:"max_budget"`
}
