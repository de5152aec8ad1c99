// Package gossip implements the peer-to-peer side of this protocol:
// symmetric WebSocket connections over which agents exchange blocks and
// ask each other for ones they're missing. Grounded on
// original_source/blockchain/bc_agent.py's use_ws/broadcast pair, with
// the same message shapes, carried over gorilla/websocket instead of
// aiohttp's WebSocketResponse.
package gossip

import (
	"encoding/json"
	"fmt"
	"math/big"

	"ticketchain/core"
)

// missingMessage asks the peer on the other end of the connection for
// the block whose hash is Missing. The field is a bare decimal integer
// on the wire, matching how every other hash-shaped value in this
// protocol is encoded.
type missingMessage struct {
	Missing *core.BigInt `json:"missing"`
}

func newMissingMessage(h core.Hash) missingMessage {
	n, ok := new(big.Int).SetString(string(h), 10)
	if !ok {
		panic("gossip: malformed hash " + string(h))
	}
	return missingMessage{Missing: core.NewBigInt(n)}
}

// rawMessage is decoded first to tell a {"missing": h} request apart
// from a {"change": ..., "signature": ...} block, the same way
// bc_agent.py's use_ws switches on msg.keys().
type rawMessage struct {
	Missing   json.RawMessage `json:"missing"`
	Change    json.RawMessage `json:"change"`
	Signature json.RawMessage `json:"signature"`
}

// parsedMessage is the result of classifying an inbound frame: exactly
// one of Missing or Block is set.
type parsedMessage struct {
	Missing core.Hash
	Block   *core.Block
}

func parseMessage(data []byte) (*parsedMessage, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("gossip: malformed message: %w", err)
	}
	switch {
	case raw.Missing != nil && raw.Change == nil && raw.Signature == nil:
		var bi core.BigInt
		if err := json.Unmarshal(raw.Missing, &bi); err != nil || bi.Int == nil {
			return nil, fmt.Errorf("gossip: malformed missing field")
		}
		return &parsedMessage{Missing: core.Hash(bi.Int.String())}, nil
	case raw.Change != nil && raw.Signature != nil:
		var b core.Block
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("gossip: malformed block: %w", err)
		}
		return &parsedMessage{Block: &b}, nil
	default:
		return nil, fmt.Errorf("gossip: message has neither a missing nor a change/signature shape")
	}
}
