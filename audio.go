package go_lwjall

import "io"

// ChunkSource produces interleaved PCM chunks for a buffer queue.
// PullChunk returns a nil slice and a nil error once the stream has ended.
type ChunkSource interface {
	Format() Format
	PullChunk(target int) ([]byte, error)
	io.Closer
}
