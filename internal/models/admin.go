package models

// ToggleActiveResponse is returned after flipping a profile's visibility
type ToggleActiveResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Active  bool   `json:"active"`
}

// DeleteProfileResponse is returned after an admin deletes a profile
type DeleteProfileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BackfillResult summarizes a slug/image backfill run
type BackfillResult struct {
	Processed        int      `json:"processed"`
	SlugsAssigned    int      `json:"slugsAssigned"`
	ImagesNormalized int      `json:"imagesNormalized"`
	Failed           []string `json:"failed,omitempty"`
}
