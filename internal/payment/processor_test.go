package payment

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSimulatedProcessorAlwaysApproves(t *testing.T) {
	p := NewSimulatedProcessor(0, 0)

	res, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 1_000, Method: "card"})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if res.Reference == "" || res.ReceiptURL == "" {
		t.Fatalf("expected reference and receipt, got %+v", res)
	}
}

func TestSimulatedProcessorAlwaysDeclines(t *testing.T) {
	p := NewSimulatedProcessor(0, 1)

	_, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 1_000, Method: "card"})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestSimulatedProcessorRejectsNonPositiveAmount(t *testing.T) {
	p := NewSimulatedProcessor(0, 0)

	if _, err := p.Charge(context.Background(), ChargeRequest{AmountCents: 0}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestSimulatedProcessorHonorsContext(t *testing.T) {
	p := NewSimulatedProcessor(time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Charge(ctx, ChargeRequest{AmountCents: 500})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStaticProcessorKeepsReference(t *testing.T) {
	res, err := StaticProcessor{}.Charge(context.Background(), ChargeRequest{AmountCents: 100, Reference: "sim_pi_test"})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if res.Reference != "sim_pi_test" {
		t.Fatalf("expected reference preserved, got %s", res.Reference)
	}
}
