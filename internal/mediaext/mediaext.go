package mediaext

import (
	"path/filepath"
	"slices"
	"strings"
)

// Kind is the media class derived from a file extension.
type Kind int

const (
	Unsupported Kind = iota
	Image
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

var (
	imageExtensions = map[string]struct{}{
		".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
	}
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {},
	}
)

// Classify maps a file name (or bare extension) to its media kind.
func Classify(name string) Kind {
	ext := Normalize(filepath.Ext(name))
	if ext == "" {
		ext = Normalize(name)
	}
	if _, ok := imageExtensions[ext]; ok {
		return Image
	}
	if _, ok := videoExtensions[ext]; ok {
		return Video
	}
	return Unsupported
}

// Images lists the image extensions in sorted order.
func Images() []string {
	return sortedKeys(imageExtensions)
}

// Videos lists the video extensions in sorted order.
func Videos() []string {
	return sortedKeys(videoExtensions)
}

// Normalize lowercases ext and makes sure it carries a leading dot.
func Normalize(ext string) string {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized == "" {
		return ""
	}
	if !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	return normalized
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
