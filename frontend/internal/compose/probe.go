package compose

import (
	"bytes"
	"context"
	"time"

	"github.com/abema/go-mp4"
)

// DurationProber reports a video's duration. known is false when the container
// could not be decoded; callers treat that as acceptable.
type DurationProber interface {
	Probe(ctx context.Context, f File) (d time.Duration, known bool)
}

// MP4Prober reads the movie header of MP4/QuickTime files. Other containers are unknown.
type MP4Prober struct{}

func (MP4Prober) Probe(ctx context.Context, f File) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	info, err := mp4.Probe(bytes.NewReader(f.Data))
	if err != nil || info.Timescale == 0 {
		return 0, false
	}
	seconds := float64(info.Duration) / float64(info.Timescale)
	return time.Duration(seconds * float64(time.Second)), true
}
