package dtos

type HealthCheckResponse struct {
	Status  string            `json:"status"`
	Storage map[string]string `json:"storage,omitempty"`
}
