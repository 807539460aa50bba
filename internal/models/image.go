package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Image is a single gallery entry. Legacy records stored a bare URL string;
// both forms decode into Image.
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// UnmarshalJSON accepts either "https://..." or {"url": "...", "caption": "..."}
func (i *Image) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*i = Image{URL: url}
		return nil
	}

	// alias drops the method set to avoid recursion
	type alias Image
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("invalid image entry: %w", err)
	}
	*i = Image(a)
	return nil
}

// DecodeImages parses a stored image list. Empty or null input yields an empty list.
func DecodeImages(raw []byte) ([]Image, error) {
	images := make([]Image, 0)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return images, nil
	}
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// HasLegacyImages reports whether a stored list still contains bare URL strings
func HasLegacyImages(raw []byte) bool {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return false
	}
	for _, e := range entries {
		e = bytes.TrimSpace(e)
		if len(e) > 0 && e[0] == '"' {
			return true
		}
	}
	return false
}

// ImageURLs returns the URLs in gallery order
func ImageURLs(images []Image) []string {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	return urls
}
