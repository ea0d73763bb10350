package models

import "testing"

func TestSniffImageMIME(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
		{"png", []byte("\x89PNG\r\n\x1a\n...."), "image/png"},
		{"gif87", []byte("GIF87a...."), "image/gif"},
		{"gif89", []byte("GIF89a...."), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"svg", []byte("<?xml version=\"1.0\"?><svg/>"), "image/svg+xml"},
		{"empty", nil, "image/png"},
		{"unknown", []byte("plain text"), "image/png"},
	}

	for _, tc := range cases {
		if got := SniffImageMIME(tc.data); got != tc.expected {
			t.Errorf("%s: SniffImageMIME = %q, expected %q", tc.name, got, tc.expected)
		}
	}
}
