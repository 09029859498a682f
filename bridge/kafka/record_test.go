package kafka

import "testing"

func TestRegistryResolveKnownRegisterID(t *testing.T) {
	r := NewRegistry(map[uint32]uint32{1: 42})

	got, ok := r.Resolve(ComponentRecord{RegisterID: 1, Data: []byte("payload")})
	if !ok {
		t.Fatal("expected resolution for known register id")
	}
	if got.ID != 42 || string(got.Payload) != "payload" {
		t.Fatalf("unexpected resolved component: %+v", got)
	}
}

func TestRegistryResolveUnknownRegisterIDFails(t *testing.T) {
	r := NewRegistry(nil)

	if _, ok := r.Resolve(ComponentRecord{RegisterID: 99}); ok {
		t.Fatal("expected resolution to fail for unknown register id")
	}
}
