package dto

import (
	"strings"
	"time"

	"order-webhook-service/internal/core/domain"
)

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Password string `json:"password" binding:"required,max=256"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// OrderURI binds the :id path segment of admin order routes.
type OrderURI struct {
	ID string `uri:"id" binding:"required,order_id"`
}

// ResendResponse is the response body for a resent confirmation.
type ResendResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// OrderBundleResponse is the admin view of an order bundle.
type OrderBundleResponse struct {
	Order     OrderResponse     `json:"order"`
	Purchaser PurchaserResponse `json:"purchaser"`
	Address   AddressResponse   `json:"shipping_address"`
	Items     []LineItemDTO     `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	Shipping  float64           `json:"shipping"`
	Total     float64           `json:"total"`
}

type OrderResponse struct {
	ID            int64   `json:"id"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	Currency      string  `json:"currency"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentID     *string `json:"payment_id,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

type PurchaserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AddressResponse struct {
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Pincode      string  `json:"pincode"`
	Phone        *string `json:"phone,omitempty"`
}

type LineItemDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Variant   *string `json:"variant,omitempty"`
	ImageURL  *string `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"line_total"`
}

// NewOrderBundleResponse maps a domain bundle to its admin representation.
func NewOrderBundleResponse(b *domain.OrderBundle) OrderBundleResponse {
	items := make([]LineItemDTO, 0, len(b.Items))
	for _, it := range b.Items {
		title := "Product"
		if it.Product.Title != nil && strings.TrimSpace(*it.Product.Title) != "" {
			title = *it.Product.Title
		}
		items = append(items, LineItemDTO{
			ID:        it.ID,
			Title:     title,
			Variant:   it.Variant.Label,
			ImageURL:  it.Product.ImageURL,
			Quantity:  it.Quantity,
			Price:     it.Price,
			LineTotal: it.LineTotal(),
		})
	}

	var email string
	if b.Purchaser.Email != nil {
		email = *b.Purchaser.Email
	}

	return OrderBundleResponse{
		Order: OrderResponse{
			ID:            b.Order.ID,
			Status:        b.Order.Status,
			CreatedAt:     b.Order.CreatedAt.UTC().Format(time.RFC3339),
			Currency:      b.Order.CurrencyCode(),
			TotalAmount:   b.Order.TotalAmount,
			PaymentID:     b.Order.PaymentID,
			PaymentMethod: b.Order.PaymentMethod,
		},
		Purchaser: PurchaserResponse{
			ID:    b.Purchaser.ID,
			Name:  b.Purchaser.DisplayName(),
			Email: email,
		},
		Address: AddressResponse{
			AddressLine1: b.Address.AddressLine1,
			AddressLine2: b.Address.AddressLine2,
			City:         b.Address.City,
			State:        b.Address.State,
			Pincode:      b.Address.Pincode,
			Phone:        b.Address.Phone,
		},
		Items:    items,
		Subtotal: b.Subtotal(),
		Shipping: b.Shipping(),
		Total:    b.Order.GrandTotal(),
	}
}
