// SPDX-License-Identifier: MIT

// Package decoder adapts file-format-specific decoders to the pipeline
// package's FileSource contract: pulled reads of arbitrary frame counts,
// mono float32 output, internal zero-padding past end-of-file.
package decoder

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chunkFrames is how many frames WAV pulls from the underlying decoder at
// a time; unrelated to the caller's Read buffer size.
const chunkFrames = 4096

// WAV is a pipeline.FileSource backed by github.com/go-audio/wav. Samples
// are down-mixed to mono by channel averaging and normalized to the
// [-1, 1] float32 range according to the file's bit depth.
type WAV struct {
	closer     io.Closer
	decoder    *wav.Decoder
	numChans   int
	maxSample  float64
	pending    []float32 // decoded, not-yet-consumed mono samples
	exhausted  bool
}

// NewWAV opens and validates a WAV stream for decoding.
func NewWAV(r io.ReadSeeker) (*WAV, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("decoder: not a valid WAV stream")
	}

	numChans := int(d.NumChans)
	if numChans < 1 {
		numChans = 1
	}

	w := &WAV{
		decoder:   d,
		numChans:  numChans,
		maxSample: float64(int64(1) << (d.BitDepth - 1)),
	}
	if c, ok := r.(io.Closer); ok {
		w.closer = c
	}
	return w, nil
}

// Read fills buf completely, zero-padding once the stream is exhausted.
func (w *WAV) Read(buf []float32) error {
	for len(w.pending) < len(buf) && !w.exhausted {
		if err := w.decodeChunk(); err != nil {
			return fmt.Errorf("decoder: wav: %w", err)
		}
	}

	n := copy(buf, w.pending)
	w.pending = w.pending[n:]
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// Close releases the underlying reader, if it is closable.
func (w *WAV) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// decodeChunk pulls one chunk of interleaved PCM from the decoder, down-
// mixes it to mono, normalizes it, and appends it to w.pending.
func (w *WAV) decodeChunk() error {
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: w.numChans, SampleRate: int(w.decoder.SampleRate)},
		Data:   make([]int, chunkFrames*w.numChans),
	}

	n, err := w.decoder.PCMBuffer(intBuf)
	if err != nil && err != io.EOF {
		return err
	}
	if n == 0 {
		w.exhausted = true
		return nil
	}

	frames := n / w.numChans
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < w.numChans; ch++ {
			sum += float64(intBuf.Data[i*w.numChans+ch])
		}
		w.pending = append(w.pending, float32(sum/float64(w.numChans)/w.maxSample))
	}

	if n < len(intBuf.Data) {
		w.exhausted = true
	}
	return nil
}
