package clients

import (
	"bytes"
	"net/http"
	"strings"
)

// SniffContentType detects the media type of an upload. http.DetectContentType misses
// several video containers, so those are checked by signature first.
func SniffContentType(b []byte) string {
	if len(b) >= 12 && bytes.Equal(b[4:8], []byte("ftyp")) {
		brand := string(b[8:12])
		if brand == "qt  " {
			return "video/quicktime"
		}
		if strings.HasPrefix(brand, "heic") || strings.HasPrefix(brand, "heix") || strings.HasPrefix(brand, "mif1") {
			return "image/heic"
		}
		return "video/mp4"
	}
	if len(b) >= 4 && bytes.Equal(b[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return "video/webm"
	}
	return http.DetectContentType(b)
}

// IsAnalyzableMedia reports whether a content type is an image or a video.
func IsAnalyzableMedia(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

// IsVideo reports whether a content type is a video.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}
