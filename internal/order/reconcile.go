package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

const statusConfirmed = "Confirmed"

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type wireOrder struct {
	ID           flexString `json:"id"`
	OrderID      flexString `json:"order_id"`
	StoreID      flexString `json:"store_id"`
	StoreIDCamel flexString `json:"storeId"`
	Status       string     `json:"status"`
	Remark       string     `json:"remark"`
	Remarks      string     `json:"remarks"`
}

func (w wireOrder) subOrder() checkout.SubOrder {
	so := checkout.SubOrder{
		OrderID: string(w.ID),
		StoreID: string(w.StoreID),
		Status:  w.Status,
		Remark:  w.Remark,
	}
	if so.OrderID == "" {
		so.OrderID = string(w.OrderID)
	}
	if so.StoreID == "" {
		so.StoreID = string(w.StoreIDCamel)
	}
	if so.Remark == "" {
		so.Remark = w.Remarks
	}
	return so
}

// parseSubOrders accepts a single order object or an array of per-store orders.
func parseSubOrders(raw json.RawMessage) ([]checkout.SubOrder, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var wires []wireOrder
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &wires); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
	} else {
		var w wireOrder
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		wires = []wireOrder{w}
	}

	out := make([]checkout.SubOrder, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.subOrder())
	}
	return out, nil
}

func isFailed(so checkout.SubOrder) bool {
	return strings.EqualFold(strings.TrimSpace(so.Status), "failed")
}

// duplicateReference matches remarks like "Payment reference already used".
func duplicateReference(remark string) bool {
	r := strings.ToLower(remark)
	return strings.Contains(r, "reference") &&
		(strings.Contains(r, "already") || strings.Contains(r, "duplicate") || strings.Contains(r, "exists"))
}

type reconciliation struct {
	Orders   []checkout.SubOrder
	Failures []checkout.SubOrder
	Healed   int
}

// AllFailed reports whether no sub-order went through. An empty response counts
// as success since the order service accepted the request.
func (r reconciliation) AllFailed() bool {
	return len(r.Orders) > 0 && len(r.Failures) == len(r.Orders)
}

// reconcile classifies sub-orders. With heal set, a sub-order that failed only
// because its payment reference was already used is taken as confirmed: the
// order service rejects the retry of a submission it already accepted. Every
// heal is recorded on the sub-order and logged.
func reconcile(orders []checkout.SubOrder, heal bool, logger *log.Logger, sessionID string) reconciliation {
	var r reconciliation
	for _, so := range orders {
		if isFailed(so) && heal && duplicateReference(so.Remark) {
			logger.Printf("session=%s order=%s store=%s healed %s -> %s (remark %q)",
				sessionID, so.OrderID, so.StoreID, so.Status, statusConfirmed, so.Remark)
			so.OriginalStatus = so.Status
			so.Status = statusConfirmed
			so.Healed = true
			r.Healed++
		}
		if isFailed(so) {
			r.Failures = append(r.Failures, so)
		}
		r.Orders = append(r.Orders, so)
	}
	return r
}
