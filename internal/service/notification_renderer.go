package service

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"order-webhook-service/internal/core/domain"
	tmpl "order-webhook-service/internal/template"
)

// TemplateSource yields the confirmation template text.
type TemplateSource interface {
	Load() (string, error)
}

// Branding holds the store details shown in every confirmation.
type Branding struct {
	StoreName    string
	LogoURL      string
	StoreURL     string
	SupportEmail string
}

const noImageBlock = `<div style="width:64px;height:64px;background:#f4f4f5;color:#a1a1aa;font-size:10px;line-height:64px;text-align:center;border-radius:4px;">No image</div>`

// NotificationRendererImpl implements ports.NotificationRenderer.
type NotificationRendererImpl struct {
	templates TemplateSource
	brand     Branding
}

// NewNotificationRenderer creates a renderer over the given template source.
func NewNotificationRenderer(templates TemplateSource, brand Branding) *NotificationRendererImpl {
	return &NotificationRendererImpl{templates: templates, brand: brand}
}

// CurrencySymbol maps a currency code to the symbol shown to purchasers.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return "₹"
	}
}

func formatMoney(symbol string, amount float64) string {
	return symbol + strconv.FormatFloat(amount, 'f', 2, 64)
}

// FormatShipping renders a shipping charge, with zero shown as "Free".
func FormatShipping(symbol string, amount float64) string {
	if amount <= domain.ShippingEpsilon {
		return "Free"
	}
	return formatMoney(symbol, amount)
}

// Render builds the confirmation for bundle. Every datastore value is
// escaped before it reaches the template.
func (r *NotificationRendererImpl) Render(bundle *domain.OrderBundle) (*domain.RenderedNotification, error) {
	tpl, err := r.templates.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTemplateUnavailable, err)
	}

	order := &bundle.Order
	symbol := CurrencySymbol(order.CurrencyCode())

	values := map[string]string{
		"store_name":     html.EscapeString(r.brand.StoreName),
		"logo_url":       html.EscapeString(r.brand.LogoURL),
		"store_url":      html.EscapeString(r.brand.StoreURL),
		"support_email":  html.EscapeString(r.brand.SupportEmail),
		"year":           strconv.Itoa(order.CreatedAt.Year()),
		"order_id":       strconv.FormatInt(order.ID, 10),
		"order_date":     formatOrderDate(order.CreatedAt),
		"order_status":   html.EscapeString(order.Status),
		"payment_method": html.EscapeString(derefOr(order.PaymentMethod, "N/A")),
		"payment_id":     html.EscapeString(derefOr(order.PaymentID, "")),
		"currency":       order.CurrencyCode(),
		"customer_name":  html.EscapeString(bundle.Purchaser.DisplayName()),
		"customer_email": html.EscapeString(derefOr(bundle.Purchaser.Email, "")),
		"address_line1":  html.EscapeString(bundle.Address.AddressLine1),
		"address_line2":  optionalLine(bundle.Address.AddressLine2),
		"city":           html.EscapeString(bundle.Address.City),
		"state":          html.EscapeString(bundle.Address.State),
		"pincode":        html.EscapeString(bundle.Address.Pincode),
		"phone":          html.EscapeString(derefOr(bundle.Address.Phone, "")),
		"items":          renderItems(bundle.Items, symbol),
		"subtotal":       formatMoney(symbol, bundle.Subtotal()),
		"shipping":       FormatShipping(symbol, bundle.Shipping()),
		"total":          formatMoney(symbol, order.GrandTotal()),
	}

	return &domain.RenderedNotification{
		To:       derefOr(bundle.Purchaser.Email, ""),
		Subject:  domain.ConfirmationSubject(order.ID),
		HTMLBody: tmpl.Substitute(tpl, values),
	}, nil
}

func renderItems(items []domain.LineItem, symbol string) string {
	var sb strings.Builder
	for _, li := range items {
		title := derefOr(li.Product.Title, "")
		if strings.TrimSpace(title) == "" {
			title = "Product"
		}
		title = html.EscapeString(title)

		variant := ""
		if li.Variant.Label != nil && strings.TrimSpace(*li.Variant.Label) != "" {
			variant = fmt.Sprintf(` <span style="color:#71717a;">(%s)</span>`, html.EscapeString(*li.Variant.Label))
		}

		image := noImageBlock
		if li.Product.ImageURL != nil && strings.TrimSpace(*li.Product.ImageURL) != "" {
			image = fmt.Sprintf(`<img src="%s" alt="%s" width="64" height="64" style="border-radius:4px;object-fit:cover;">`,
				html.EscapeString(*li.Product.ImageURL), title)
		}

		fmt.Fprintf(&sb, `<tr>
  <td width="72" style="padding:8px 0;">%s</td>
  <td style="padding:8px;"><div>%s%s</div><div style="color:#71717a;font-size:13px;">Qty: %d</div></td>
  <td align="right" style="padding:8px 0;white-space:nowrap;">%s</td>
</tr>
`, image, title, variant, li.Quantity, formatMoney(symbol, li.LineTotal()))
	}
	return sb.String()
}

func formatOrderDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func optionalLine(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ""
	}
	return html.EscapeString(*s) + "<br>"
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
