package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDeclined indicates the processor refused the charge.
var ErrDeclined = errors.New("payment declined")

// Processor represents a connector to an external card processor.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ChargeRequest captures the details of a single charge attempt.
type ChargeRequest struct {
	AmountCents int64
	Method      string
	Reference   string
}

// ChargeResult captures the processor's response to a charge.
type ChargeResult struct {
	Reference  string
	ReceiptURL string
}

// SimulatedProcessor mimics an external payment provider: each charge takes a
// configurable processing delay and fails with a configurable probability.
type SimulatedProcessor struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProcessor builds a simulator with the given processing delay
// and failure probability in [0, 1].
func NewSimulatedProcessor(delay time.Duration, failureRate float64) *SimulatedProcessor {
	return &SimulatedProcessor{
		delay:       delay,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Charge waits out the processing delay and then approves or declines the
// request according to the configured failure rate.
func (p *SimulatedProcessor) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if req.AmountCents <= 0 {
		return ChargeResult{}, fmt.Errorf("amount must be positive")
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ChargeResult{}, ctx.Err()
		}
	}

	p.mu.Lock()
	draw := p.rng.Float64()
	p.mu.Unlock()

	if draw < p.failureRate {
		return ChargeResult{}, ErrDeclined
	}

	ref := req.Reference
	if ref == "" {
		ref = fmt.Sprintf("sim_pi_%s", uuid.NewString())
	}
	return ChargeResult{
		Reference:  ref,
		ReceiptURL: fmt.Sprintf("https://receipts.shebloom.app/%s", ref),
	}, nil
}

// StaticProcessor approves every charge, or declines every charge when Err is
// set. Useful for deterministic tests.
type StaticProcessor struct {
	Err error
}

// Charge returns a synthetic approval or the configured error.
func (p StaticProcessor) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	if p.Err != nil {
		return ChargeResult{}, p.Err
	}
	ref := req.Reference
	if ref == "" {
		ref = uuid.NewString()
	}
	return ChargeResult{
		Reference:  ref,
		ReceiptURL: fmt.Sprintf("https://receipts.shebloom.app/%s", ref),
	}, nil
}
