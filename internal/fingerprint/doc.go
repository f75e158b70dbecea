// Package fingerprint computes perceptual fingerprints for media files.
//
// Images are decoded directly; videos are probed for dimensions and
// duration, then a single representative keyframe is extracted and
// hashed with the same algorithm. The fingerprint is a 256-bit
// perceptual hash (16x16 block pHash) encoded as 64 hex characters.
// Equal tokens mean visually similar content, not byte identity.
//
// External tool invocation (ffprobe/ffmpeg) sits behind the FrameTool
// interface so tests can run without the tools installed, and every
// invocation carries an explicit timeout.
package fingerprint
