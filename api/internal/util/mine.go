package util

import (
	"net/http"
	"strings"
)

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

// PickMIME prefers the MIME type the provider reported, then sniffs the bytes.
func PickMIME(reported string, data []byte) string {
	if r := strings.TrimSpace(reported); r != "" {
		return r
	}
	if len(data) > 0 {
		return SniffMimeHTTP(data)
	}
	return "image/png"
}
