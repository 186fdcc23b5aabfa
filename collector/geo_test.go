package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fallback = Position{Latitude: -23.5505, Longitude: -46.6333}

type stubLocator struct {
	pos  Position
	err  error
	hang bool
}

func (l *stubLocator) CurrentPosition(ctx context.Context) (Position, error) {
	if l.hang {
		<-ctx.Done()
		return Position{}, ctx.Err()
	}
	return l.pos, l.err
}

func TestResolveWithoutDeviceUsesFallback(t *testing.T) {
	g := &GeoResolver{Default: fallback}
	assert.Equal(t, fallback, g.Resolve(context.Background()))
}

func TestResolveDeviceError(t *testing.T) {
	g := &GeoResolver{
		Device:  &stubLocator{err: errors.New("permission denied")},
		Default: fallback,
	}
	assert.Equal(t, fallback, g.Resolve(context.Background()))
}

func TestResolveDeviceSuccess(t *testing.T) {
	device := Position{Latitude: -22.9068, Longitude: -43.1729}
	g := &GeoResolver{
		Device:  &stubLocator{pos: device},
		Default: fallback,
	}
	assert.Equal(t, device, g.Resolve(context.Background()))
}

func TestResolveHangingDeviceIsBounded(t *testing.T) {
	g := &GeoResolver{
		Device:  &stubLocator{hang: true},
		Default: fallback,
		Timeout: 50 * time.Millisecond,
	}

	start := time.Now()
	pos := g.Resolve(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, fallback, pos)
	assert.Less(t, elapsed, 2*time.Second)
}
