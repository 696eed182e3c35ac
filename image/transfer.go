package image

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// transferChunkSize is the unit of IO pacing. Device transfers are paced
// chunk by chunk so a byte budget smooths throughput instead of gating
// whole files.
const transferChunkSize = 64 * 1024

// transferController bounds the concurrency and throughput of device
// transfers. A nil controller imposes no limits.
type transferController struct {
	workers   *semaphore.Weighted
	ioLimiter *rate.Limiter
}

func newTransferController(workers, ioLimitBytesPerSec int64) *transferController {
	if workers <= 0 {
		workers = 1
	}

	c := &transferController{
		workers: semaphore.NewWeighted(workers),
	}
	if ioLimitBytesPerSec > 0 {
		burst := int(ioLimitBytesPerSec)
		if burst < transferChunkSize {
			burst = transferChunkSize
		}
		c.ioLimiter = rate.NewLimiter(rate.Limit(ioLimitBytesPerSec), burst)
	}
	return c
}

// acquireWorker reserves a transfer slot. Blocks while all slots are busy.
func (c *transferController) acquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// releaseWorker releases a transfer slot.
func (c *transferController) releaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// acquireIO waits until the IO budget allows the specified number of bytes.
func (c *transferController) acquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
