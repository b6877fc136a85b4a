package transcriber

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"talkboard/encoder"
)

type transcribeFunc func(ctx context.Context, audio []byte, lang string) (*Result, error)

type batchSession struct {
	ctx        context.Context
	lang       string
	transcribe transcribeFunc
	encoder    encoder.Encoder
	blockChan  chan []int16
	encodeDone chan struct{}
	sampleBuf  []int16
	bufMu      sync.Mutex
	closed     bool
}

func newBatchSession(ctx context.Context, cfg SessionConfig, transcribe transcribeFunc) (*batchSession, error) {
	enc, err := encoder.NewFlac()
	if err != nil {
		return nil, err
	}

	bs := &batchSession{
		ctx:        ctx,
		lang:       primaryTag(cfg.Locale),
		transcribe: transcribe,
		encoder:    enc,
		blockChan:  make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(bs.encodeDone)
		for block := range bs.blockChan {
			start := time.Now()
			bs.encoder.EncodeBlock(block)
			bs.encoder.AddEncodeTime(time.Since(start))
		}
	}()

	return bs, nil
}

func (bs *batchSession) Feed(pcm []byte) {
	bs.bufMu.Lock()
	if bs.closed {
		bs.bufMu.Unlock()
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		bs.sampleBuf = append(bs.sampleBuf, int16(binary.LittleEndian.Uint16(pcm[i:])))
	}
	for len(bs.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, bs.sampleBuf[:encoder.BlockSize])
		bs.sampleBuf = bs.sampleBuf[encoder.BlockSize:]
		bs.blockChan <- block
	}
	bs.bufMu.Unlock()
}

// finish flushes buffered samples and stops the encoder goroutine. It
// reports false if the session was already finished.
func (bs *batchSession) finish() bool {
	bs.bufMu.Lock()
	if bs.closed {
		bs.bufMu.Unlock()
		return false
	}
	bs.closed = true
	if len(bs.sampleBuf) > 0 {
		partial := make([]int16, len(bs.sampleBuf))
		copy(partial, bs.sampleBuf)
		bs.sampleBuf = nil
		bs.blockChan <- partial
	}
	close(bs.blockChan)
	bs.bufMu.Unlock()
	<-bs.encodeDone
	return true
}

func (bs *batchSession) Abort() {
	bs.finish()
}

func (bs *batchSession) Close() (SessionResult, error) {
	if !bs.finish() {
		return SessionResult{}, fmt.Errorf("session already closed")
	}

	if err := bs.encoder.Close(); err != nil {
		return SessionResult{}, err
	}

	enc := bs.encoder
	if enc.TotalFrames() == 0 {
		return SessionResult{NoSpeech: true}, nil
	}

	result, err := bs.transcribe(bs.ctx, enc.Bytes(), bs.lang)
	if err != nil {
		return SessionResult{}, err
	}

	text := strings.TrimSpace(result.Text)
	noSpeech := text == ""

	rawSize := enc.TotalFrames() * 2
	encodedSize := uint64(len(enc.Bytes()))
	compressionPct := (1.0 - float64(encodedSize)/float64(rawSize)) * 100
	audioDuration := float64(enc.TotalFrames()) / float64(encoder.SampleRate)
	netMetrics := result.Metrics
	if netMetrics == nil {
		netMetrics = &NetworkMetrics{}
	}

	return SessionResult{
		Text:      text,
		HasText:   !noSpeech,
		NoSpeech:  noSpeech,
		RateLimit: result.RateLimit,
		Batch: &BatchStats{
			AudioLengthS:     audioDuration,
			RawSizeKB:        float64(rawSize) / 1024,
			CompressedSizeKB: float64(encodedSize) / 1024,
			CompressionPct:   compressionPct,
			PeakLevel:        enc.Peak(),
			EncodeTimeMs:     float64(enc.EncodeTime().Milliseconds()),
			DNSTimeMs:        float64(netMetrics.DNS.Milliseconds()),
			TLSTimeMs:        float64(netMetrics.TLS.Milliseconds()),
			TTFBMs:           float64(netMetrics.TTFB.Milliseconds()),
			TotalTimeMs:      float64(netMetrics.Sum().Milliseconds()),
			ConnReused:       netMetrics.ConnReused,
		},
		Metrics: formatMetrics(rawSize, encodedSize, compressionPct, audioDuration, netMetrics, result.Duration),
	}, nil
}

func formatMetrics(rawSize, encodedSize uint64, compressionPct, audioDuration float64, m *NetworkMetrics, apiDur float64) []string {
	reusedStatus := ""
	if m.ConnReused {
		reusedStatus = " (reused)"
	}

	lines := []string{
		fmt.Sprintf("audio:      %.1fs | %.1f KB → %.1f KB (%.0f%% smaller)",
			audioDuration, float64(rawSize)/1024, float64(encodedSize)/1024, compressionPct),
		fmt.Sprintf("conn_wait:  %dms%s", m.ConnWait.Milliseconds(), reusedStatus),
		fmt.Sprintf("dns:        %dms", m.DNS.Milliseconds()),
		fmt.Sprintf("tls:        %dms", m.TLS.Milliseconds()),
		fmt.Sprintf("ttfb:       %dms", m.TTFB.Milliseconds()),
		fmt.Sprintf("total:      %dms", m.Sum().Milliseconds()),
	}
	if apiDur > 0 {
		lines = append(lines, fmt.Sprintf("api_dur:    %.2fs", apiDur))
	}
	return lines
}
