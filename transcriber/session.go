package transcriber

type SessionConfig struct {
	// Locale is a BCP 47 tag such as "ja-JP"; only the primary subtag is sent.
	Locale string
}

type BatchStats struct {
	AudioLengthS     float64
	RawSizeKB        float64
	CompressedSizeKB float64
	CompressionPct   float64
	PeakLevel        float64
	EncodeTimeMs     float64
	DNSTimeMs        float64
	TLSTimeMs        float64
	TTFBMs           float64
	TotalTimeMs      float64
	ConnReused       bool
}

type SessionResult struct {
	Text      string
	HasText   bool
	NoSpeech  bool
	RateLimit string // "remaining/limit" or empty
	Batch     *BatchStats
	Metrics   []string
}

// Session accumulates one utterance of 16 kHz mono PCM and transcribes it
// on Close. Abort discards the audio without contacting the provider.
type Session interface {
	Feed(pcm []byte)
	Close() (SessionResult, error)
	Abort()
}
