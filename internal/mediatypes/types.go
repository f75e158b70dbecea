package mediatypes

import (
	"path/filepath"
	"strings"
)

// MediaKind represents the kind of a media file.
type MediaKind string

const (
	// KindImage represents a still image, including RAW camera formats.
	KindImage MediaKind = "image"
	// KindVideo represents a video file.
	KindVideo MediaKind = "video"
	// KindUnknown represents an unrecognized file type.
	KindUnknown MediaKind = "unknown"
)

// ImageExtensions maps processed-image extensions to whether they are supported.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// RawExtensions maps RAW camera format extensions to whether they are supported.
// RAW files are images for fingerprinting, but groups mixing RAW and
// processed formats are treated as false positives by the resolver.
var RawExtensions = map[string]bool{
	".cr2": true,
	".cr3": true,
	".nef": true,
	".arw": true,
	".orf": true,
	".rw2": true,
	".raf": true,
	".dng": true,
	".raw": true,
}

// VideoExtensions maps video extensions to whether they are supported.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".mts":  true,
	".ts":   true,
}

// KindForExt returns the MediaKind for a given file extension.
// The extension should include the leading dot; matching is
// case-insensitive. Returns KindUnknown if the extension is not recognized.
func KindForExt(ext string) MediaKind {
	ext = strings.ToLower(ext)
	if ImageExtensions[ext] || RawExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindUnknown
}

// KindForPath returns the MediaKind for a file path based on its extension.
func KindForPath(path string) MediaKind {
	return KindForExt(filepath.Ext(path))
}

// IsRawExt returns true if the extension is a RAW camera format.
func IsRawExt(ext string) bool {
	return RawExtensions[strings.ToLower(ext)]
}

// IsProcessedImageExt returns true if the extension is a processed
// (non-RAW) image format.
func IsProcessedImageExt(ext string) bool {
	return ImageExtensions[strings.ToLower(ext)]
}

// IsMediaFile returns true if the path has a recognized media extension.
func IsMediaFile(path string) bool {
	return KindForPath(path) != KindUnknown
}
