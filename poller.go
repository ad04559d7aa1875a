package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"BaroServer/bmp180"
)

type sampler interface {
	Read() (bmp180.Reading, error)
}

type publisher interface {
	Publish(SensorReading) error
}

// poller reads the sensor on a fixed interval and keeps the latest reading.
type poller struct {
	dev      sampler
	interval time.Duration
	pub      publisher // optional
	log      *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	latest SensorReading
	have   bool
}

func newPoller(dev sampler, interval time.Duration, pub publisher, logger *slog.Logger) *poller {
	return &poller{dev: dev, interval: interval, pub: pub, log: logger, now: time.Now}
}

// run takes one reading immediately, then one per interval until ctx is
// done or the sensor is lost.
func (p *poller) run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("invalid poll interval %v", p.interval)
	}
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		if err := p.poll(); errors.Is(err, bmp180.ErrTransportLost) || errors.Is(err, bmp180.ErrInvalidState) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (p *poller) poll() error {
	r, err := p.dev.Read()
	if err != nil {
		p.log.Warn("failed to read sensor", "error", err)
		return err
	}

	reading := NewSensorReading(p.now()).fromReading(r)
	p.mu.Lock()
	p.latest = reading
	p.have = true
	p.mu.Unlock()
	p.log.Debug("new reading", "temperature", reading.Temperature, "pressure", reading.Pressure)

	if p.pub != nil {
		if err := p.pub.Publish(reading); err != nil {
			p.log.Warn("failed to publish reading", "error", err)
		}
	}
	return nil
}

// current returns the latest reading, if any.
func (p *poller) current() (SensorReading, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.have
}
