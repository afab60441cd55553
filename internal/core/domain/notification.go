package domain

import "fmt"

// RenderedNotification is a finished confirmation message. It is never
// persisted.
type RenderedNotification struct {
	To       string
	Subject  string
	HTMLBody string
}

// ConfirmationSubject returns the subject line for an order confirmation.
func ConfirmationSubject(orderID int64) string {
	return fmt.Sprintf("Order Confirmation - #%d", orderID)
}

// CaptureResult is the gateway's answer to a capture call.
type CaptureResult struct {
	PaymentID string `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Captured  bool   `json:"captured"`
}
