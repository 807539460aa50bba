package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimWriter persists through the in-memory index like the unique constraint would
func claimWriter(store *memSlugStore, owner string) services.SlugWriter {
	return func(_ context.Context, candidate string) error {
		if !store.claim(candidate, owner) {
			return apperrors.ErrSlugTaken
		}
		return nil
	}
}

func TestSlugResolver_GuideCounterSequence(t *testing.T) {
	store := newMemSlugStore()
	resolver := services.NewSlugResolver(store, 10)
	ctx := context.Background()

	expected := []string{"maria-gomez", "maria-gomez-1", "maria-gomez-2"}
	for i, want := range expected {
		owner := "guide-" + want
		got, err := resolver.Assign(ctx, services.SlugRequest{
			Name:     "  María  Gómez ",
			UserType: models.UserTypeGuide,
		}, claimWriter(store, owner))
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, want, got)
	}
}

func TestSlugResolver_ExplorerCountrySuffix(t *testing.T) {
	store := newMemSlugStore()
	resolver := services.NewSlugResolver(store, 10)
	ctx := context.Background()

	req := services.SlugRequest{Name: "Ana", Country: "Brasil", UserType: models.UserTypeExplorer}

	first, err := resolver.Assign(ctx, req, claimWriter(store, "explorer-1"))
	require.NoError(t, err)
	assert.Equal(t, "ana-brasil", first)

	second, err := resolver.Assign(ctx, req, claimWriter(store, "explorer-2"))
	require.NoError(t, err)
	assert.Equal(t, "ana-1-brasil", second)
}

func TestSlugResolver_ExplorerSkipsBaseHeldByGuide(t *testing.T) {
	store := newMemSlugStore()
	resolver := services.NewSlugResolver(store, 10)
	ctx := context.Background()

	guide, err := resolver.Assign(ctx, services.SlugRequest{
		Name:     "Ana",
		UserType: models.UserTypeGuide,
	}, claimWriter(store, "guide-1"))
	require.NoError(t, err)
	assert.Equal(t, "ana", guide)

	explorer, err := resolver.Assign(ctx, services.SlugRequest{
		Name:     "Ana",
		Country:  "Brasil",
		UserType: models.UserTypeExplorer,
	}, claimWriter(store, "explorer-1"))
	require.NoError(t, err)
	assert.Equal(t, "ana-1-brasil", explorer)
}

func TestSlugResolver_ExplorerSkipsBareCounterForms(t *testing.T) {
	store := newMemSlugStore("ana", "ana-1", "ana-2-brasil")
	resolver := services.NewSlugResolver(store, 10)

	got, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:     "Ana",
		Country:  "Brasil",
		UserType: models.UserTypeExplorer,
	}, claimWriter(store, "explorer-1"))

	require.NoError(t, err)
	assert.Equal(t, "ana-3-brasil", got)
}

func TestSlugResolver_ExplorerWithoutCountry(t *testing.T) {
	resolver := services.NewSlugResolver(newMemSlugStore(), 10)

	got, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:     "Ana",
		UserType: models.UserTypeExplorer,
	}, func(context.Context, string) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, "ana", got)
}

func TestSlugResolver_RetriesWhenWriteLosesRace(t *testing.T) {
	// The existence check says free, but a concurrent writer got there first
	store := newMemSlugStore()
	resolver := services.NewSlugResolver(store, 10)

	var attempts []string
	got, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:     "Luis",
		UserType: models.UserTypeGuide,
	}, func(_ context.Context, candidate string) error {
		attempts = append(attempts, candidate)
		if candidate == "luis" {
			return apperrors.ErrSlugTaken
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "luis-1", got)
	assert.Equal(t, []string{"luis", "luis-1"}, attempts)
}

func TestSlugResolver_ExcludesOwnProfile(t *testing.T) {
	store := newMemSlugStore()
	store.claim("pedro", "profile-1")
	resolver := services.NewSlugResolver(store, 10)

	got, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:      "Pedro",
		UserType:  models.UserTypeGuide,
		ExcludeID: "profile-1",
	}, claimWriter(store, "profile-1"))

	require.NoError(t, err)
	assert.Equal(t, "pedro", got)
}

func TestSlugResolver_Exhausted(t *testing.T) {
	store := newMemSlugStore("rosa", "rosa-1", "rosa-2")
	resolver := services.NewSlugResolver(store, 3)

	writes := 0
	_, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:     "Rosa",
		UserType: models.UserTypeGuide,
	}, func(context.Context, string) error {
		writes++
		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Zero(t, writes)
}

func TestSlugResolver_RejectsUnsluggableNames(t *testing.T) {
	resolver := services.NewSlugResolver(newMemSlugStore(), 10)

	for _, name := range []string{"", "   ", "!!!", "¿?"} {
		_, err := resolver.Assign(context.Background(), services.SlugRequest{
			Name:     name,
			UserType: models.UserTypeGuide,
		}, func(context.Context, string) error {
			t.Fatalf("write called for %q", name)
			return nil
		})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "name %q", name)
	}
}

func TestSlugResolver_WriteErrorStops(t *testing.T) {
	resolver := services.NewSlugResolver(newMemSlugStore(), 10)
	boom := errors.New("connection reset")

	_, err := resolver.Assign(context.Background(), services.SlugRequest{
		Name:     "Eva",
		UserType: models.UserTypeGuide,
	}, func(context.Context, string) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestSlugRequest_Candidate(t *testing.T) {
	explorer := services.SlugRequest{Country: "Perú", UserType: models.UserTypeExplorer}
	guide := services.SlugRequest{Country: "Perú", UserType: models.UserTypeGuide}

	assert.Equal(t, "ana-peru", explorer.Candidate("ana", 0))
	assert.Equal(t, "ana-2-peru", explorer.Candidate("ana", 2))
	assert.Equal(t, "ana-2", guide.Candidate("ana", 2))
}
