package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	guides      []*models.Profile
	invalidated int
}

func (f *fakeDirectory) Guides(_ context.Context) ([]*models.Profile, error) { return f.guides, nil }
func (f *fakeDirectory) GuideBySlug(_ context.Context, _ string) (*models.Profile, bool) {
	return nil, false
}
func (f *fakeDirectory) Invalidate()   { f.invalidated++ }
func (f *fakeDirectory) IsReady() bool { return true }

// fakeProfileStore embeds the interface so only the methods under test need bodies
type fakeProfileStore struct {
	ProfileStore
	writeErr error
}

func (f *fakeProfileStore) CreateProfile(_ context.Context, _ *models.Profile) error { return f.writeErr }
func (f *fakeProfileStore) SetActive(_ context.Context, _ string, _ bool) error    { return f.writeErr }
func (f *fakeProfileStore) MarkEmailVerified(_ context.Context, _ string) error    { return f.writeErr }

func TestProfileRepository_ListActiveGuidesFilters(t *testing.T) {
	dir := &fakeDirectory{guides: []*models.Profile{
		{Slug: "a", Category: models.DefaultCategory, Location: "Cusco"},
		{Slug: "b", Category: "Aventura", Location: "Cusco"},
		{Slug: "c", Category: models.DefaultCategory, Location: "Lima"},
	}}
	repo := NewProfileRepository(&fakeProfileStore{}, dir)

	guides, err := repo.ListActiveGuides(context.Background(), models.GuideFilter{Category: models.DefaultCategory, Location: "cus"})
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, "a", guides[0].Slug)

	all, err := repo.ListActiveGuides(context.Background(), models.GuideFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProfileRepository_InvalidatesOnSuccessfulWrite(t *testing.T) {
	dir := &fakeDirectory{}
	repo := NewProfileRepository(&fakeProfileStore{}, dir)

	require.NoError(t, repo.Create(context.Background(), &models.Profile{}))
	require.NoError(t, repo.SetActive(context.Background(), "id", false))
	assert.Equal(t, 2, dir.invalidated)

	// Verification doesn't change the directory
	require.NoError(t, repo.MarkEmailVerified(context.Background(), "id"))
	assert.Equal(t, 2, dir.invalidated)
}

func TestProfileRepository_KeepsCacheOnFailedWrite(t *testing.T) {
	dir := &fakeDirectory{}
	repo := NewProfileRepository(&fakeProfileStore{writeErr: errors.New("boom")}, dir)

	assert.Error(t, repo.Create(context.Background(), &models.Profile{}))
	assert.Equal(t, 0, dir.invalidated)
}

type fakeReviewStore struct {
	ReviewStore
	rating models.Rating
	err    error
}

func (f *fakeReviewStore) CreateReviewAndAggregate(_ context.Context, _ *models.Review) (models.Rating, error) {
	return f.rating, f.err
}

func TestReviewRepository_CreateAndAggregate(t *testing.T) {
	dir := &fakeDirectory{}
	repo := NewReviewRepository(&fakeReviewStore{rating: models.Rating{Stars: 4, Count: 1}}, dir)

	rating, err := repo.CreateAndAggregate(context.Background(), &models.Review{})
	require.NoError(t, err)
	assert.Equal(t, models.Rating{Stars: 4, Count: 1}, rating)
	assert.Equal(t, 1, dir.invalidated)

	failing := NewReviewRepository(&fakeReviewStore{err: errors.New("boom")}, dir)
	_, err = failing.CreateAndAggregate(context.Background(), &models.Review{})
	assert.Error(t, err)
	assert.Equal(t, 1, dir.invalidated)
}
