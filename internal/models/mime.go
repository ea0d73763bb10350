package models

import "bytes"

// SniffImageMIME detects an image content type from leading magic bytes.
// Unknown or empty payloads fall back to image/png.
func SniffImageMIME(data []byte) string {
	if len(data) == 0 {
		return "image/png"
	}
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && bytes.Contains(data[:12], []byte("WEBP")):
		return "image/webp"
	case bytes.HasPrefix(data, []byte("<?xml")) || bytes.Contains(data[:min(len(data), 200)], []byte("<svg")):
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
