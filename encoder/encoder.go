package encoder

import "time"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder compresses 16 kHz mono PCM blocks for upload.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	Peak() float64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}
