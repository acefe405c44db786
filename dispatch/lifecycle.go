package dispatch

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Start runs every car on its own goroutine until Stop is called or ctx
// ends.
func (b *Building) Start(ctx context.Context) error {
	b.runMtx.Lock()
	defer b.runMtx.Unlock()
	if b.running {
		return errRunning
	}

	ctx, b.cancel = context.WithCancel(ctx)
	for _, c := range b.cars {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			c.Run(ctx)
		}()
	}
	b.running = true
	return nil
}

// Stop cancels the car goroutines and waits for them to return. A car
// between floors keeps its unfinished stop for the next Start.
func (b *Building) Stop() {
	b.runMtx.Lock()
	defer b.runMtx.Unlock()
	if !b.running {
		return
	}

	glog.Infof("dispatch: stopping %d cars", len(b.cars))
	b.cancel()
	b.wg.Wait()
	b.running = false
}

// Drain serves every pending stop synchronously, one stop per car in turn,
// until no car has work left. It cannot be used while the building runs.
func (b *Building) Drain(ctx context.Context) error {
	b.runMtx.Lock()
	defer b.runMtx.Unlock()
	if b.running {
		return errRunning
	}

	for {
		served := false
		for _, c := range b.cars {
			if c.ServeNext(ctx) {
				served = true
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !served {
			return nil
		}
	}
}

// WaitIdle blocks until no car has stops left.
func (b *Building) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for b.Busy() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
