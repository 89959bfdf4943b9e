package models

// ProductInfo is the result of a successful extraction.
type ProductInfo struct {
	// Title is the #productTitle text, trimmed. Never empty on success.
	Title string

	// ImageURL is the first image the fallback chain produced. May be empty.
	ImageURL string

	// ImageSource names the strategy that produced ImageURL ("" when none did).
	ImageSource string
}

// ProductInfoResponse is the response for GET /api/amazon-info.
type ProductInfoResponse struct {
	Title string `json:"title"`

	// ImageURL is null when no image could be found.
	ImageURL *string `json:"imageUrl"`
}

// NewProductInfoResponse converts a ProductInfo into its wire form.
func NewProductInfoResponse(info *ProductInfo) ProductInfoResponse {
	resp := ProductInfoResponse{Title: info.Title}
	if info.ImageURL != "" {
		img := info.ImageURL
		resp.ImageURL = &img
	}
	return resp
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
