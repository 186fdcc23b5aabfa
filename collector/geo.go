package collector

import (
	"context"
	"time"
)

// Position is a device coordinate pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator reads the device position. It may fail or hang; the resolver
// below absorbs both.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

const defaultLocateTimeout = 5 * time.Second

// GeoResolver resolves a position and never fails: on a missing device,
// an error or a timeout it answers the fixed default instead. Collection
// is never blocked by missing location data.
type GeoResolver struct {
	Device  Locator
	Default Position
	Timeout time.Duration
}

func (g *GeoResolver) Resolve(ctx context.Context) Position {
	if g.Device == nil {
		return g.Default
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := g.Device.CurrentPosition(ctx)
		ch <- result{pos, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return g.Default
		}
		return r.pos
	case <-ctx.Done():
		return g.Default
	}
}
