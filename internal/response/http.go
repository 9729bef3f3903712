package response

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// CategorySummary describes an exportable category.
type CategorySummary struct {
	Name      string `json:"nombre"`
	Sheet     string `json:"hoja"`
	Active    bool   `json:"activa"`
	HasLayout bool   `json:"tiene_plantilla"`
	Items     int    `json:"items_mapeados"`
}
