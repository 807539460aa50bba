package models

import "time"

// Review bounds
const (
	MinRating          = 1
	MaxRating          = 5
	MinCommentLength   = 10
	MaxCommentLength   = 500
	RecentReviewsLimit = 10
)

// Rating is the derived aggregate of a guide's reviews
type Rating struct {
	Stars float64 `json:"stars"`
	Count int     `json:"count"`
}

// AggregateRating computes the mean of ratings. No ratings yields a zero Rating.
func AggregateRating(ratings []int) Rating {
	if len(ratings) == 0 {
		return Rating{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Rating{
		Stars: float64(sum) / float64(len(ratings)),
		Count: len(ratings),
	}
}

// Review is an explorer's rating of a guide. One per (guide, explorer) pair.
type Review struct {
	ID           string    `json:"id"`
	GuideID      string    `json:"guideId"`
	ExplorerID   string    `json:"explorerId"`
	ExplorerName string    `json:"explorerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubmitReviewRequest represents a review submission from an explorer.
// Field checks happen in the service so each failure gets its own message.
type SubmitReviewRequest struct {
	GuideID string `json:"guideId" binding:"max=64"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment" binding:"max=2000"`
}

// SubmitReviewResponse represents the response after submitting a review
type SubmitReviewResponse struct {
	Success bool    `json:"success"`
	Review  *Review `json:"review,omitempty"`
	Rating  *Rating `json:"rating,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// GuideReviewsResponse lists a guide's reviews newest first
type GuideReviewsResponse struct {
	Reviews []*Review `json:"reviews"`
	Rating  Rating    `json:"rating"`
}
