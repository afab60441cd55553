package domain

import (
	"strings"
	"time"
)

// DefaultCurrency is used when neither the display nor the settlement
// currency is set on an order.
const DefaultCurrency = "INR"

// Order is the stored order row. UserID and ShippingAddressID are nil once
// the referenced row is deleted (ON DELETE SET NULL).
type Order struct {
	ID                 int64     `json:"id"`
	UserID             *int64    `json:"user_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	TotalAmount        float64   `json:"total_amount"`
	Status             string    `json:"status"`
	PaymentID          *string   `json:"payment_id,omitempty"`
	Currency           *string   `json:"currency,omitempty"`
	DisplayCurrency    *string   `json:"display_currency,omitempty"`
	DisplayTotalAmount *float64  `json:"display_total_amount,omitempty"`
	PaymentMethod      *string   `json:"payment_method,omitempty"`
	ShippingAddressID  *int64    `json:"shipping_address_id,omitempty"`
}

// CurrencyCode picks the display currency, then the settlement currency,
// then DefaultCurrency.
func (o *Order) CurrencyCode() string {
	for _, c := range []*string{o.DisplayCurrency, o.Currency} {
		if c != nil && strings.TrimSpace(*c) != "" {
			return strings.ToUpper(strings.TrimSpace(*c))
		}
	}
	return DefaultCurrency
}

// GrandTotal is the purchaser-facing total: display total when present.
func (o *Order) GrandTotal() float64 {
	if o.DisplayTotalAmount != nil {
		return *o.DisplayTotalAmount
	}
	return o.TotalAmount
}

// Purchaser is the user who placed the order.
type Purchaser struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// HasEmail reports whether the purchaser can be mailed.
func (p *Purchaser) HasEmail() bool {
	return p.Email != nil && strings.TrimSpace(*p.Email) != ""
}

// DisplayName falls back to "Customer" when no name is stored.
func (p *Purchaser) DisplayName() string {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return "Customer"
	}
	return *p.Name
}

type ShippingAddress struct {
	ID           int64   `json:"id"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	Phone        *string `json:"phone,omitempty"`
}

// ProductSnapshot and VariantSnapshot come from LEFT JOINs, so every field
// may be missing.
type ProductSnapshot struct {
	Title    *string `json:"title,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type VariantSnapshot struct {
	Label *string `json:"label,omitempty"`
}

type LineItem struct {
	ID         int64           `json:"id"`
	Quantity   int             `json:"quantity"`
	Price      float64         `json:"price"`
	TotalPrice *float64        `json:"total_price,omitempty"`
	Product    ProductSnapshot `json:"product"`
	Variant    VariantSnapshot `json:"variant"`
}

// LineTotal is the precomputed total when stored, else price * quantity.
func (li LineItem) LineTotal() float64 {
	if li.TotalPrice != nil {
		return *li.TotalPrice
	}
	return li.Price * float64(li.Quantity)
}

// OrderBundle is the consolidated order view used for a single
// confirmation. It is built per request and never cached.
type OrderBundle struct {
	Order     Order           `json:"order"`
	Purchaser Purchaser       `json:"purchaser"`
	Address   ShippingAddress `json:"address"`
	Items     []LineItem      `json:"items"`
}

func (b *OrderBundle) Subtotal() float64 {
	var sum float64
	for _, li := range b.Items {
		sum += li.LineTotal()
	}
	return sum
}

// ShippingEpsilon absorbs floating point noise between grand total and
// subtotal.
const ShippingEpsilon = 1e-4

// Shipping returns grand total minus subtotal, or 0 when the difference is
// negative or within ShippingEpsilon.
func (b *OrderBundle) Shipping() float64 {
	diff := b.Order.GrandTotal() - b.Subtotal()
	if diff <= ShippingEpsilon {
		return 0
	}
	return diff
}
