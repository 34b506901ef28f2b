package handler

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/notification"
	"github.com/weddify/marketplace/internal/domain/order"
)

// dateFormat is the wire format for calendar dates (service_date, event_date).
const dateFormat = "2006-01-02"

// parseDate converts an optional wire date into a time pointer.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, *raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid date %q", *raw)
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateFormat)
	return &s
}

type cartLineBody struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	ServiceID   int64     `json:"service_id"`
	Quantity    int       `json:"quantity"`
	ServiceDate *string   `json:"service_date,omitempty"`
	ServiceTime *string   `json:"service_time,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

type cartBody struct {
	ID    int64           `json:"id"`
	Lines []cartLineBody  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func toCartLineBody(l cart.Line) cartLineBody {
	return cartLineBody{
		ID:          l.ID,
		Category:    string(l.Reference.Category),
		ServiceID:   l.Reference.ID,
		Quantity:    l.Quantity,
		ServiceDate: formatDate(l.ServiceDate),
		ServiceTime: l.ServiceTime,
		Notes:       l.Notes,
		AddedAt:     l.AddedAt,
	}
}

func toCartBody(c *cart.Cart, total decimal.Decimal) cartBody {
	body := cartBody{ID: c.ID, Lines: []cartLineBody{}, Total: total}
	for _, l := range c.Lines {
		body.Lines = append(body.Lines, toCartLineBody(l))
	}
	return body
}

type orderLineBody struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	ServiceID   int64           `json:"service_id"`
	ServiceName string          `json:"service_name"`
	VendorName  string          `json:"vendor_name"`
	VendorEmail string          `json:"vendor_email"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ServiceDate *string         `json:"service_date,omitempty"`
	ServiceTime *string         `json:"service_time,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

type orderBody struct {
	ID                  int64           `json:"id"`
	OrderNumber         string          `json:"order_number"`
	CustomerName        string          `json:"customer_name"`
	CustomerEmail       string          `json:"customer_email"`
	CustomerPhone       string          `json:"customer_phone"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	OrderStatus         string          `json:"order_status"`
	PaymentStatus       string          `json:"payment_status"`
	EventDate           *string         `json:"event_date,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	Items               []orderLineBody `json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toOrderBody(o *order.Order) orderBody {
	body := orderBody{
		ID:                  o.ID,
		OrderNumber:         o.Number,
		CustomerName:        o.CustomerName,
		CustomerEmail:       o.CustomerEmail,
		CustomerPhone:       o.CustomerPhone,
		TotalAmount:         o.TotalAmount,
		OrderStatus:         string(o.Status),
		PaymentStatus:       string(o.PaymentStatus),
		EventDate:           formatDate(o.EventDate),
		SpecialInstructions: o.SpecialInstructions,
		Items:               []orderLineBody{},
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
	for _, l := range o.Lines {
		body.Items = append(body.Items, orderLineBody{
			ID:          l.ID,
			Category:    string(l.Reference.Category),
			ServiceID:   l.Reference.ID,
			ServiceName: l.ServiceName,
			VendorName:  l.VendorName,
			VendorEmail: l.VendorEmail,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.TotalPrice,
			ServiceDate: formatDate(l.ServiceDate),
			ServiceTime: l.ServiceTime,
			Notes:       l.Notes,
		})
	}
	return body
}

type notificationBody struct {
	ID          int64      `json:"id"`
	OrderID     int64      `json:"order_id"`
	EmailSent   bool       `json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	Viewed      bool       `json:"viewed"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toNotificationBody(n *notification.VendorNotification) notificationBody {
	return notificationBody{
		ID:          n.ID,
		OrderID:     n.OrderID,
		EmailSent:   n.EmailSent,
		EmailSentAt: n.EmailSentAt,
		Viewed:      n.Viewed,
		ViewedAt:    n.ViewedAt,
		CreatedAt:   n.CreatedAt,
	}
}
