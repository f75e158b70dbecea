// Package mediatypes classifies files by extension into the media kinds
// the fingerprinting pipeline understands.
//
// Two kinds exist: images and videos. RAW camera formats (cr2, nef, arw,
// dng, ...) count as images for scanning purposes but are tracked
// separately so the duplicate resolver can recognize RAW+JPEG pairs,
// which share a perceptual fingerprint without being true duplicates.
package mediatypes
