package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedReview struct {
	guideID    string
	explorerID string
	rating     int
}

// fakeRatingTx keeps reviews in memory and records aggregate writes
type fakeRatingTx struct {
	reviews []storedReview
	written map[string]models.Rating
	execErr error
}

func newFakeRatingTx(reviews ...storedReview) *fakeRatingTx {
	return &fakeRatingTx{reviews: reviews, written: make(map[string]models.Rating)}
}

// deleteExplorer mimics the ON DELETE CASCADE on reviews.explorer_id
func (f *fakeRatingTx) deleteExplorer(explorerID string) {
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.explorerID != explorerID {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
}

func (f *fakeRatingTx) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	guideID := args[0].(string)
	var ratings []int
	for _, r := range f.reviews {
		if r.guideID == guideID {
			ratings = append(ratings, r.rating)
		}
	}
	return &intRows{values: ratings}, nil
}

func (f *fakeRatingTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	f.written[args[0].(string)] = models.Rating{Stars: args[1].(float64), Count: args[2].(int)}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

// intRows serves a single int column
type intRows struct {
	values []int
	pos    int
}

func (r *intRows) Close()                                       {}
func (r *intRows) Err() error                                   { return nil }
func (r *intRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *intRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *intRows) RawValues() [][]byte                          { return nil }
func (r *intRows) Conn() *pgx.Conn                              { return nil }

func (r *intRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *intRows) Scan(dest ...any) error {
	*dest[0].(*int) = r.values[r.pos-1]
	return nil
}

func (r *intRows) Values() ([]any, error) {
	return []any{r.values[r.pos-1]}, nil
}

func TestRefreshRating_RecomputesFromStoredReviews(t *testing.T) {
	tx := newFakeRatingTx(
		storedReview{guideID: "g1", explorerID: "e1", rating: 5},
		storedReview{guideID: "g1", explorerID: "e2", rating: 4},
		storedReview{guideID: "g2", explorerID: "e1", rating: 1},
	)

	rating, err := refreshRating(context.Background(), tx, "g1")

	require.NoError(t, err)
	assert.Equal(t, models.Rating{Stars: 4.5, Count: 2}, rating)
	assert.Equal(t, rating, tx.written["g1"])
	assert.NotContains(t, tx.written, "g2")
}

func TestRefreshRating_AfterExplorerDeleted(t *testing.T) {
	tx := newFakeRatingTx(
		storedReview{guideID: "g1", explorerID: "explorer-a", rating: 5},
		storedReview{guideID: "g1", explorerID: "explorer-b", rating: 3},
		storedReview{guideID: "g2", explorerID: "explorer-a", rating: 2},
	)
	ctx := context.Background()

	before, err := refreshRating(ctx, tx, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Stars: 4, Count: 2}, before)

	tx.deleteExplorer("explorer-a")
	for _, guideID := range []string{"g1", "g2"} {
		_, err := refreshRating(ctx, tx, guideID)
		require.NoError(t, err)
	}

	assert.Equal(t, models.Rating{Stars: 3, Count: 1}, tx.written["g1"])
	assert.Equal(t, models.Rating{}, tx.written["g2"])
}

func TestRefreshRating_WriteFailure(t *testing.T) {
	tx := newFakeRatingTx(storedReview{guideID: "g1", explorerID: "e1", rating: 4})
	tx.execErr = errors.New("connection reset")

	_, err := refreshRating(context.Background(), tx, "g1")

	assert.ErrorIs(t, err, tx.execErr)
}
