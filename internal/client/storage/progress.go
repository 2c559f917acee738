// Package storage uploads avatar images to remote object storage and reports
// transfer progress derived from byte counts.
package storage

import (
	"errors"
	"io"
	"math"
	"sync"
)

// ProgressFunc receives the number of bytes transferred so far and the total
// number of bytes to transfer.
type ProgressFunc func(loaded, total int64)

// Percent converts a byte count into a percentage rounded to the nearest
// integer and clamped to [0, 100]. A non-positive total yields 0.
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(loaded) * 100 / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// progressReader reports the furthest offset read from r.
// Rewinds (the AWS signer hashes the body before sending it) do not produce
// smaller reports.
type progressReader struct {
	r        io.Reader
	total    int64
	onUpdate ProgressFunc

	mu       sync.Mutex
	pos      int64
	reported int64
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onUpdate: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

// Seek lets SDKs that need a rewindable body treat the reader like the
// underlying one.
func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("progress reader: underlying reader is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.mu.Lock()
	p.pos = pos
	p.mu.Unlock()
	return pos, nil
}

func (p *progressReader) advance(n int64) {
	p.mu.Lock()
	p.pos += n
	if p.pos <= p.reported {
		p.mu.Unlock()
		return
	}
	p.reported = p.pos
	loaded := p.reported
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(loaded, p.total)
	}
}
