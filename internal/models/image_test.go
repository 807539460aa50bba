package models_test

import (
	"encoding/json"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImages(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []models.Image
	}{
		{
			name:     "legacy bare string",
			raw:      `["u"]`,
			expected: []models.Image{{URL: "u", Caption: ""}},
		},
		{
			name:     "object form keeps caption",
			raw:      `[{"url":"https://cdn/a.jpg","caption":"Machu Picchu"}]`,
			expected: []models.Image{{URL: "https://cdn/a.jpg", Caption: "Machu Picchu"}},
		},
		{
			name: "mixed list keeps order",
			raw:  `["https://cdn/a.jpg", {"url":"https://cdn/b.jpg"}]`,
			expected: []models.Image{
				{URL: "https://cdn/a.jpg"},
				{URL: "https://cdn/b.jpg"},
			},
		},
		{
			name:     "null",
			raw:      `null`,
			expected: []models.Image{},
		},
		{
			name:     "empty",
			raw:      ``,
			expected: []models.Image{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := models.DecodeImages([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, images)
		})
	}
}

func TestDecodeImages_Invalid(t *testing.T) {
	_, err := models.DecodeImages([]byte(`[42]`))
	assert.Error(t, err)
}

func TestImageMarshalAlwaysObject(t *testing.T) {
	images, err := models.DecodeImages([]byte(`["u"]`))
	require.NoError(t, err)

	out, err := json.Marshal(images)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"url":"u","caption":""}]`, string(out))
}

func TestHasLegacyImages(t *testing.T) {
	assert.True(t, models.HasLegacyImages([]byte(`["u", {"url":"v","caption":""}]`)))
	assert.False(t, models.HasLegacyImages([]byte(`[{"url":"v","caption":""}]`)))
	assert.False(t, models.HasLegacyImages([]byte(`[]`)))
	assert.False(t, models.HasLegacyImages([]byte(`not json`)))
}
