package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EventKind is the gateway's event name.
type EventKind string

const (
	EventPaymentAuthorized EventKind = "payment.authorized"
	EventPaymentCaptured   EventKind = "payment.captured"
)

// WebhookOutcome is the status reported back to the gateway on success.
type WebhookOutcome string

const (
	OutcomeCapturedFromAuthorized WebhookOutcome = "captured_from_authorized"
	OutcomeOK                     WebhookOutcome = "ok"
	OutcomeIgnored                WebhookOutcome = "ignored_event"
	OutcomeDuplicate              WebhookOutcome = "duplicate_event"
)

var (
	ErrMissingOrderID = errors.New("internal_order_id missing")
	ErrInvalidOrderID = errors.New("internal_order_id is not a non-negative integer")
)

// WebhookEvent is an inbound gateway notification. Raw holds the exact bytes
// the gateway signed; Payload is only populated after the signature checks out.
type WebhookEvent struct {
	ID      string
	Kind    EventKind
	Raw     []byte
	Payload map[string]any
}

// ParseWebhookEvent decodes a verified body into a generic payload tree.
// Numbers are kept as json.Number so ids and amounts survive unchanged.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	if tree == nil {
		return nil, errors.New("decode webhook body: not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode webhook body: trailing data after JSON object")
	}

	kind, _ := tree["event"].(string)
	return &WebhookEvent{
		Kind:    EventKind(kind),
		Raw:     raw,
		Payload: tree,
	}, nil
}

// PaymentEntity returns payload.payment.entity, or nil.
func (e *WebhookEvent) PaymentEntity() map[string]any {
	return lookupObject(e.Payload, "payload", "payment", "entity")
}

// PaymentID returns the gateway payment reference, or "".
func (e *WebhookEvent) PaymentID() string {
	id, _ := e.PaymentEntity()["id"].(string)
	return id
}

// PaymentAmount returns the payment amount in minor units. ok is false when
// the field is absent or not an integer.
func (e *WebhookEvent) PaymentAmount() (amount int64, ok bool) {
	switch v := e.PaymentEntity()["amount"].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// InternalOrderID reads notes.internal_order_id from the payment entity,
// falling back to the order entity.
func (e *WebhookEvent) InternalOrderID() (int64, error) {
	raw, found := noteValue(lookupObject(e.Payload, "payload", "payment", "entity", "notes"))
	if !found {
		raw, found = noteValue(lookupObject(e.Payload, "payload", "order", "entity", "notes"))
	}
	if !found {
		return 0, ErrMissingOrderID
	}
	return ParseOrderID(raw)
}

// ParseOrderID accepts a decimal string or JSON integer >= 0. Only plain
// digits count: signs, exponents and fractions are rejected.
func ParseOrderID(raw any) (int64, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case json.Number:
		s = v.String()
	default:
		return 0, ErrInvalidOrderID
	}
	if !isDigits(s) {
		return 0, ErrInvalidOrderID
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidOrderID
	}
	return n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func noteValue(notes map[string]any) (any, bool) {
	v, ok := notes["internal_order_id"]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func lookupObject(tree map[string]any, path ...string) map[string]any {
	cur := tree
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
