// internal/webhook/extract.go
package webhook

import (
	"bytes"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Extract normalizes an indexer webhook payload into a flat transfer
// list. The input may be a single event object or an arbitrarily nested
// JSON array of events; arrays are flattened in encounter order.
//
// Extraction is best effort and never fails: an item that matches no
// recognized shape, or whose sub-shape cannot be decoded, contributes
// nothing and its siblings are still processed.
func Extract(payload []byte) []Transfer {
	transfers := []Transfer{}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return transfers
	}

	if payload[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			logrus.WithError(err).Warn("Webhook payload array is not decodable, dropping")
			return transfers
		}
		for _, item := range items {
			transfers = append(transfers, Extract(item)...)
		}
		return transfers
	}

	transfers = append(transfers, extractTransferList(payload)...)
	transfers = append(transfers, extractParsedTransaction(payload)...)
	transfers = append(transfers, extractTypedInfo(payload)...)
	return transfers
}

func extractTransferList(item []byte) []Transfer {
	var event transferListEvent
	if err := json.Unmarshal(item, &event); err != nil {
		logrus.WithError(err).Warn("Skipping transfer-list shape")
		return nil
	}

	var transfers []Transfer
	for _, t := range event.Transfers {
		// The transfer element's own hash wins over the event-level one.
		txHash := t.txHash()
		if txHash == "" {
			txHash = event.txHash()
		}
		transfers = append(transfers, Transfer{
			Source:      t.source(),
			Destination: t.destination(),
			Lamports:    t.lamports(),
			Mint:        t.Mint,
			TxHash:      txHash,
			Slot:        event.slot(),
			Raw:         t.raw,
		})
	}
	return transfers
}

func extractParsedTransaction(item []byte) []Transfer {
	var event parsedTransactionEvent
	if err := json.Unmarshal(item, &event); err != nil {
		logrus.WithError(err).Warn("Skipping parsed-transaction shape")
		return nil
	}
	if event.Transaction == nil || len(event.Transaction.Signatures) == 0 || event.Transaction.Message == nil {
		return nil
	}

	var transfers []Transfer
	for _, instr := range event.Transaction.Message.Instructions {
		if instr.Parsed == nil || instr.Parsed.Type != "transfer" || instr.Parsed.Info == nil {
			continue
		}
		info := instr.Parsed.Info
		transfers = append(transfers, Transfer{
			Source:      info.source(),
			Destination: info.destination(),
			Lamports:    info.lamports(),
			TxHash:      event.Transaction.Signatures[0],
			Slot:        int64(event.Slot),
			Raw:         item,
		})
	}
	return transfers
}

func extractTypedInfo(item []byte) []Transfer {
	var event typedInfoEvent
	if err := json.Unmarshal(item, &event); err != nil {
		logrus.WithError(err).Warn("Skipping typed-info shape")
		return nil
	}
	if event.Type == "" || event.Info == nil {
		return nil
	}

	info := event.Info
	if info.Amount == 0 || info.destination() == "" {
		return nil
	}

	return []Transfer{{
		Source:      info.source(),
		Destination: info.destination(),
		Lamports:    int64(info.Amount),
		TxHash:      event.txHash(),
		Slot:        int64(event.Slot),
		Raw:         item,
	}}
}
