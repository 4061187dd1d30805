// Package classify sniffs MIME types for media files and implements the
// filesystem skip-rules used during discovery.
package classify

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMIME is returned when content sniffing and the extension table
// both fail to recognize a file.
const DefaultMIME = "application/octet-stream"

// extraSignatures covers container formats net/http.DetectContentType does
// not recognize (HEIC, Matroska, WebM, QuickTime variants) or recognizes
// only generically. Checked in order against the leading bytes of the file.
var extraSignatures = []struct {
	mime   string
	offset int
	magic  []byte
}{
	{"video/x-matroska", 0, []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{"image/heic", 4, []byte("ftypheic")},
	{"image/heic", 4, []byte("ftypheix")},
	{"image/heic", 4, []byte("ftypheif")},
	{"image/heic", 4, []byte("ftypmif1")},
	{"video/quicktime", 4, []byte("ftypqt")},
	{"video/mp4", 4, []byte("ftypisom")},
	{"video/mp4", 4, []byte("ftypmp42")},
	{"video/mp4", 4, []byte("ftypMSNV")},
	{"image/tiff", 0, []byte{0x49, 0x49, 0x2A, 0x00}}, // little-endian TIFF
	{"image/tiff", 0, []byte{0x4D, 0x4D, 0x00, 0x2A}}, // big-endian TIFF
}

// extensionFallback is consulted only when byte sniffing yields the
// generic default, mirroring the teacher's extension-table fallback in
// processAndSend.
var extensionFallback = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heic",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".3gp":  "video/3gpp",
}

// DetectMIME sniffs the leading bytes of the file at path and returns the
// best-effort MIME type, or DefaultMIME if nothing matches.
func DetectMIME(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty or unreadable file: fall back to extension only.
		if ext, ok := extensionFallback[strings.ToLower(filepath.Ext(path))]; ok {
			return ext, nil
		}
		return DefaultMIME, nil
	}
	buf = buf[:n]

	if mime := sniffExtra(buf); mime != "" {
		return mime, nil
	}

	mime := http.DetectContentType(buf)
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	if IsImageMIME(mime) || IsVideoMIME(mime) {
		return mime, nil
	}

	if ext, ok := extensionFallback[strings.ToLower(filepath.Ext(path))]; ok {
		return ext, nil
	}

	return DefaultMIME, nil
}

func sniffExtra(buf []byte) string {
	for _, sig := range extraSignatures {
		end := sig.offset + len(sig.magic)
		if len(buf) < end {
			continue
		}
		if bytes.Equal(buf[sig.offset:end], sig.magic) {
			return sig.mime
		}
	}
	return ""
}

// IsImageMIME reports whether mime is in the image/* family. The check is
// an exact, case-sensitive prefix match — "Image/jpeg" does not count.
func IsImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// IsVideoMIME reports whether mime is in the video/* family.
func IsVideoMIME(mime string) bool {
	return strings.HasPrefix(mime, "video/")
}

var skipNamesCI = map[string]bool{
	"thumbs.db":   true,
	"desktop.ini": true,
	".ds_store":   true,
}

var skipSuffixes = []string{".tmp", ".temp", ".bak", ".cache"}

// ShouldSkip reports whether a directory entry should be excluded from
// discovery: well-known system/temp files, case-insensitively by name, and
// files with a known temp-file suffix. Dotfiles are never skipped on that
// basis alone — "Thumbs.db" is excluded, but ".facebook_123.jpg" is valid
// media.
func ShouldSkip(name string) bool {
	lower := strings.ToLower(name)
	if skipNamesCI[lower] {
		return true
	}
	for _, suf := range skipSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}
