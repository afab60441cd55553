package service

import (
	"io"
	"time"

	"order-webhook-service/internal/core/domain"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func int64Ptr(n int64) *int64 { return &n }

// fakeBundle returns a complete bundle of one item: 3 x 10.00, total 30.00.
func fakeBundle(orderID int64) *domain.OrderBundle {
	userID := int64(gofakeit.Number(1, 100000))
	addressID := int64(gofakeit.Number(1, 100000))
	return &domain.OrderBundle{
		Order: domain.Order{
			ID:                orderID,
			UserID:            int64Ptr(userID),
			CreatedAt:         time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			TotalAmount:       30,
			Status:            "paid",
			PaymentID:         strPtr("pay_" + gofakeit.LetterN(14)),
			Currency:          strPtr("INR"),
			PaymentMethod:     strPtr("upi"),
			ShippingAddressID: int64Ptr(addressID),
		},
		Purchaser: domain.Purchaser{
			ID:    userID,
			Name:  strPtr(gofakeit.Name()),
			Email: strPtr(gofakeit.Email()),
		},
		Address: domain.ShippingAddress{
			ID:           addressID,
			AddressLine1: gofakeit.Street(),
			City:         gofakeit.City(),
			State:        gofakeit.State(),
			Pincode:      gofakeit.Zip(),
			Phone:        strPtr(gofakeit.Phone()),
		},
		Items: []domain.LineItem{
			{
				ID:       int64(gofakeit.Number(1, 100000)),
				Quantity: 3,
				Price:    10,
				Product: domain.ProductSnapshot{
					Title:    strPtr("Linen Kurta"),
					ImageURL: strPtr("https://cdn.example.com/p/" + gofakeit.LetterN(8) + ".jpg"),
				},
				Variant: domain.VariantSnapshot{Label: strPtr("M")},
			},
		},
	}
}
