// internal/webhook/types.go
package webhook

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Transfer is the canonical record of a value movement extracted from an
// indexer payload. Fields the payload did not carry are zero values.
type Transfer struct {
	Source      string          `json:"source,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Lamports    int64           `json:"lamports"`
	Mint        string          `json:"mint,omitempty"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Slot        int64           `json:"slot,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// RawMap decodes the retained source payload into a generic map for
// storage. Returns nil when there is nothing usable.
func (t Transfer) RawMap() map[string]interface{} {
	if len(t.Raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(t.Raw, &m); err != nil {
		return nil
	}
	return m
}

// looseInt64 decodes a JSON value that indexers variously send as a
// number, a numeric string, or garbage. Decoding never fails: anything
// non-numeric or negative becomes 0.
type looseInt64 int64

func (l *looseInt64) UnmarshalJSON(data []byte) error {
	*l = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(s)
	}

	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		if n > 0 {
			*l = looseInt64(n)
		}
		return nil
	}

	if f, err := strconv.ParseFloat(string(data), 64); err == nil && f > 0 {
		*l = looseInt64(f)
	}
	return nil
}

// The recognized payload shapes. Each event item is decoded against every
// shape; shapes are independent and more than one may contribute
// transfers from the same item.

// transferListEvent covers enhanced payloads with an explicit transfer
// list. The event-level transaction hash and slot apply to every entry.
type transferListEvent struct {
	Transfers       []rawTransfer `json:"transfers"`
	Signature       string        `json:"signature"`
	TxHash          string        `json:"txHash"`
	TransactionHash string        `json:"transactionHash"`
	Slot            looseInt64    `json:"slot"`
	Transaction     *struct {
		Slot looseInt64 `json:"slot"`
	} `json:"transaction"`
}

func (e transferListEvent) txHash() string {
	switch {
	case e.Signature != "":
		return e.Signature
	case e.TxHash != "":
		return e.TxHash
	default:
		return e.TransactionHash
	}
}

func (e transferListEvent) slot() int64 {
	if e.Slot != 0 {
		return int64(e.Slot)
	}
	if e.Transaction != nil {
		return int64(e.Transaction.Slot)
	}
	return 0
}

// rawTransfer tolerates the sender/receiver field aliases seen across
// indexer payload generations. Some generations carry the transaction
// hash on the transfer element itself rather than on the event.
type rawTransfer struct {
	From        string      `json:"from"`
	Source      string      `json:"source"`
	Sender      string      `json:"sender"`
	To          string      `json:"to"`
	Destination string      `json:"destination"`
	Receiver    string      `json:"receiver"`
	Lamports    *looseInt64 `json:"lamports"`
	Amount      looseInt64  `json:"amount"`
	Mint        string      `json:"mint"`
	TxHash      string      `json:"txHash"`
	Signature   string      `json:"signature"`

	raw json.RawMessage
}

// UnmarshalJSON keeps the undecoded sub-object so the retained audit
// payload is what the indexer actually sent, unknown fields included.
func (t *rawTransfer) UnmarshalJSON(data []byte) error {
	type plain rawTransfer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = rawTransfer(p)
	t.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (t rawTransfer) source() string {
	switch {
	case t.From != "":
		return t.From
	case t.Source != "":
		return t.Source
	default:
		return t.Sender
	}
}

func (t rawTransfer) destination() string {
	switch {
	case t.To != "":
		return t.To
	case t.Destination != "":
		return t.Destination
	default:
		return t.Receiver
	}
}

func (t rawTransfer) lamports() int64 {
	if t.Lamports != nil {
		return int64(*t.Lamports)
	}
	return int64(t.Amount)
}

func (t rawTransfer) txHash() string {
	if t.TxHash != "" {
		return t.TxHash
	}
	return t.Signature
}

// parsedTransactionEvent covers raw transaction payloads whose message
// instructions were decoded by the indexer. Only instructions parsed as
// system transfers contribute.
type parsedTransactionEvent struct {
	Slot        looseInt64 `json:"slot"`
	Transaction *struct {
		Signatures []string `json:"signatures"`
		Message    *struct {
			Instructions []parsedInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

type parsedInstruction struct {
	Parsed *struct {
		Type string        `json:"type"`
		Info *transferInfo `json:"info"`
	} `json:"parsed"`
}

// typedInfoEvent covers the flat {type, info} event shape.
type typedInfoEvent struct {
	Type      string        `json:"type"`
	Info      *transferInfo `json:"info"`
	Signature string        `json:"signature"`
	TxHash    string        `json:"txHash"`
	Slot      looseInt64    `json:"slot"`
}

func (e typedInfoEvent) txHash() string {
	if e.Signature != "" {
		return e.Signature
	}
	return e.TxHash
}

type transferInfo struct {
	Source      string      `json:"source"`
	From        string      `json:"from"`
	Destination string      `json:"destination"`
	To          string      `json:"to"`
	Lamports    *looseInt64 `json:"lamports"`
	Amount      looseInt64  `json:"amount"`
}

func (i transferInfo) source() string {
	if i.Source != "" {
		return i.Source
	}
	return i.From
}

func (i transferInfo) destination() string {
	if i.Destination != "" {
		return i.Destination
	}
	return i.To
}

func (i transferInfo) lamports() int64 {
	if i.Lamports != nil {
		return int64(*i.Lamports)
	}
	return int64(i.Amount)
}
