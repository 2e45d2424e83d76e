// SPDX-License-Identifier: MIT
package decoder

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tphakala/flac"
)

// FLAC is a pipeline.FileSource backed by github.com/tphakala/flac.
// Samples are down-mixed to mono by channel averaging and normalized to
// the [-1, 1] float32 range according to the stream's bit depth.
// Resampling is a non-goal: a FLAC stream not already at the engine's
// sample rate fails to open.
type FLAC struct {
	closer  io.Closer
	decoder *flac.Decoder

	bitsPerSample int
	numChannels   int
	divisor       float32

	pending   []float32
	exhausted bool
}

// NewFLAC opens a FLAC stream for decoding. sampleRate is the engine's
// fixed sample rate; a mismatched stream rate is rejected rather than
// resampled.
func NewFLAC(r io.Reader, sampleRate int) (*FLAC, error) {
	d, err := flac.NewDecoder(r)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("decoder: flac: opening: %w", err)
	}
	if d.SampleRate != sampleRate {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("decoder: flac: stream sample rate %d does not match engine rate %d", d.SampleRate, sampleRate)
	}

	divisor, err := bitDepthDivisor(d.BitsPerSample)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("decoder: flac: %w", err)
	}

	f := &FLAC{
		decoder:       d,
		bitsPerSample: d.BitsPerSample,
		numChannels:   d.NChannels,
		divisor:       divisor,
	}
	if c, ok := r.(io.Closer); ok {
		f.closer = c
	}
	return f, nil
}

// Read fills buf completely, zero-padding once the stream is exhausted.
func (f *FLAC) Read(buf []float32) error {
	for len(f.pending) < len(buf) && !f.exhausted {
		if err := f.decodeFrame(); err != nil {
			return fmt.Errorf("decoder: flac: %w", err)
		}
	}

	n := copy(buf, f.pending)
	f.pending = f.pending[n:]
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return nil
}

// Close releases the underlying reader, if it is closable.
func (f *FLAC) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// decodeFrame pulls one FLAC frame, down-mixes it to mono, normalizes it,
// and appends it to f.pending.
func (f *FLAC) decodeFrame() error {
	frame, err := f.decoder.Next()
	if err == io.EOF {
		f.exhausted = true
		return nil
	}
	if err != nil {
		return err
	}

	bytesPerSample := f.bitsPerSample / 8
	stride := bytesPerSample * f.numChannels
	for i := 0; i+stride <= len(frame); i += stride {
		var sum float32
		for ch := 0; ch < f.numChannels; ch++ {
			off := i + ch*bytesPerSample
			sum += float32(decodeSample(frame[off:], f.bitsPerSample)) / f.divisor
		}
		f.pending = append(f.pending, sum/float32(f.numChannels))
	}
	return nil
}

func decodeSample(b []byte, bitsPerSample int) int32 {
	switch bitsPerSample {
	case 16:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		return v << 8 >> 8 // sign-extend from 24 bits
	case 32:
		return int32(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}

func bitDepthDivisor(bitsPerSample int) (float32, error) {
	switch bitsPerSample {
	case 16:
		return 1 << 15, nil
	case 24:
		return 1 << 23, nil
	case 32:
		return 1 << 31, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth %d", bitsPerSample)
	}
}
