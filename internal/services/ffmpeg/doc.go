// Package ffmpeg wraps the external ffmpeg binary: frame and audio
// extraction from source videos, and a streaming rawvideo encode session fed
// over stdin.
package ffmpeg
