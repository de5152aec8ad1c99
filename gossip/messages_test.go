package gossip

import (
	"encoding/json"
	"testing"

	"ticketchain/core"
)

func TestParseMessageMissing(t *testing.T) {
	raw := []byte(`{"missing":` + string(core.Root) + `}`)
	msg, err := parseMessage(raw)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if msg.Missing != core.Root || msg.Block != nil {
		t.Fatalf("expected a missing-shaped message for %s, got %+v", core.Root, msg)
	}
}

func TestParseMessageBlock(t *testing.T) {
	change := core.Change{Old: core.Root, Src: "alice", Dst: "bob_b", N: 2, Memo: "m"}
	block := core.Block{Change: change, Signature: core.BigIntFromInt64(12345)}
	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal block: %v", err)
	}
	msg, err := parseMessage(data)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if msg.Block == nil || msg.Block.Change != change {
		t.Fatalf("expected block message to round-trip the change, got %+v", msg)
	}
}

func TestParseMessageMalformed(t *testing.T) {
	if _, err := parseMessage([]byte(`{"garbage":1}`)); err == nil {
		t.Fatalf("expected an error for a message with neither shape")
	}
	if _, err := parseMessage([]byte(`not json`)); err == nil {
		t.Fatalf("expected an error for invalid JSON")
	}
}

func TestNewMissingMessageRoundTrips(t *testing.T) {
	msg := newMissingMessage(core.Root)
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal missing message: %v", err)
	}
	parsed, err := parseMessage(data)
	if err != nil {
		t.Fatalf("parseMessage: %v", err)
	}
	if parsed.Missing != core.Root {
		t.Fatalf("expected missing hash %s, got %s", core.Root, parsed.Missing)
	}
}
