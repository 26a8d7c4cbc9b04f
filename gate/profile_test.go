package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/jurigo/gate"
)

func TestStaticProfile(t *testing.T) {
	p := gate.NewStaticProfile(2, "client",
		gate.NewPermission("document", gate.ActionUpload),
		gate.NewPermission("company", gate.ActionView),
	)
	if p.ID() != 2 || p.Name() != "client" {
		t.Fatalf("unexpected identity %d %s", p.ID(), p.Name())
	}
	if !p.HasPermission("document:upload") {
		t.Error("expected document:upload")
	}
	if p.HasPermission("document:verify") {
		t.Error("did not expect document:verify")
	}
	perms := p.Permissions()
	if len(perms) != 2 || perms[0] != "company:view" {
		t.Errorf("expected sorted permissions, got %v", perms)
	}
}

func TestStaticResolver_Unknown(t *testing.T) {
	r := gate.NewStaticResolver[string]()
	p, err := r.Resolve(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %v", p)
	}
}
