package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageType(t *testing.T) {
	client := &StorageClient{}

	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"valid jpeg", "image/jpeg", false},
		{"valid jpg", "image/jpg", false},
		{"valid png", "image/png", false},
		{"valid webp", "image/webp", false},
		{"valid jpeg uppercase", "IMAGE/JPEG", false},
		{"invalid gif", "image/gif", true},
		{"invalid text", "text/plain", true},
		{"invalid svg", "image/svg+xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateImageType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateImageSize(t *testing.T) {
	client := &StorageClient{}

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{"1KB", 1024, false},
		{"exactly 5MB", MaxImageSize, false},
		{"one byte over", MaxImageSize + 1, true},
		{"empty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateImageSize(tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	client := &StorageClient{}

	key := client.GenerateKey("abc", "Foto Machu Picchu.JPEG", "image/jpeg")
	assert.Regexp(t, `^profiles/abc-\d+-[0-9a-f]{8}\.jpeg$`, key)

	key = client.GenerateKey("abc", "blob", "image/webp")
	assert.Regexp(t, `^profiles/abc-\d+-[0-9a-f]{8}\.webp$`, key)

	assert.NotEqual(t, client.GenerateKey("abc", "a.png", "image/png"), client.GenerateKey("abc", "a.png", "image/png"))
}

func TestNewStorageClient_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "custom endpoint",
			cfg:  Config{BucketName: "explorepe", Endpoint: "https://storage.example.com/"},
			want: "https://storage.example.com/explorepe",
		},
		{
			name: "aws default",
			cfg:  Config{BucketName: "explorepe", Region: "sa-east-1"},
			want: "https://explorepe.s3.sa-east-1.amazonaws.com",
		},
		{
			name: "explicit cdn",
			cfg:  Config{BucketName: "explorepe", PublicBaseURL: "https://cdn.explore.pe/"},
			want: "https://cdn.explore.pe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewStorageClient(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.publicBaseURL)
		})
	}

	_, err := NewStorageClient(Config{})
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	client := &StorageClient{publicBaseURL: "https://cdn.explore.pe"}

	key, ok := client.KeyFromURL("https://cdn.explore.pe/profiles/abc-1-ff.png")
	assert.True(t, ok)
	assert.Equal(t, "profiles/abc-1-ff.png", key)

	_, ok = client.KeyFromURL("https://res.cloudinary.com/demo/image.png")
	assert.False(t, ok)

	_, ok = client.KeyFromURL("https://cdn.explore.pe/")
	assert.False(t, ok)
}
