package events

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestSubject(t *testing.T) {
	if got := Subject("jurigo", CompanyPaid); got != "jurigo.company.paid" {
		t.Fatalf("unexpected subject %s", got)
	}
	if got := Subject("", DocumentVerified); got != "document.verified" {
		t.Fatalf("unexpected subject %s", got)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), Event{Type: CompanyCreated, CompanyID: "c1"})
	_ = r.Publish(context.Background(), Event{Type: CompanySubmitted, CompanyID: "c1"})
	types := r.Types()
	if len(types) != 2 || types[0] != CompanyCreated || types[1] != CompanySubmitted {
		t.Fatalf("unexpected types %v", types)
	}

	r.Err = errors.New("bus down")
	if err := r.Publish(context.Background(), Event{Type: CompanyPaid}); err == nil {
		t.Fatal("expected configured error")
	}
	if len(r.Events()) != 2 {
		t.Fatal("failed publish must not be recorded")
	}
}

func TestClassifyNATSError(t *testing.T) {
	if c := classifyNATSError(nats.ErrConnectionClosed); !c.RecordFailure {
		t.Fatalf("closed connection should count against the breaker: %+v", c)
	}
	if c := classifyNATSError(nats.ErrMaxPayload); c.RecordFailure {
		t.Fatalf("payload errors are the caller's fault: %+v", c)
	}
}

func TestNoop(t *testing.T) {
	if err := (Noop{}).Publish(context.Background(), Event{Type: CompanyCreated}); err != nil {
		t.Fatalf("noop returned %v", err)
	}
}
