package notification

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/order"
)

// vendorSummaryMail composes the vendor-scoped order summary: only the lines
// snapshotted for that vendor, their subtotal, and the customer contact.
func vendorSummaryMail(o *order.Order, v catalog.Vendor) (subject, body string) {
	subject = fmt.Sprintf("New Order Received - #%s", o.Number)

	var b strings.Builder
	fmt.Fprintf(&b, "New Order Received!\n\n")
	fmt.Fprintf(&b, "Order Number: #%s\n", o.Number)
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n", o.CustomerEmail)
	fmt.Fprintf(&b, "Phone: %s\n", o.CustomerPhone)
	if o.EventDate != nil {
		fmt.Fprintf(&b, "Event Date: %s\n", o.EventDate.Format("2006-01-02"))
	}

	b.WriteString("\nServices Ordered:\n")
	subtotal := decimal.Zero
	for _, l := range o.VendorLines(v.Email) {
		fmt.Fprintf(&b, "- %s: %d x ₹%s = ₹%s\n",
			l.ServiceName, l.Quantity, l.UnitPrice.String(), l.TotalPrice.String())
		subtotal = subtotal.Add(l.TotalPrice)
	}
	fmt.Fprintf(&b, "\nSubtotal for your services: ₹%s\n", subtotal.String())
	fmt.Fprintf(&b, "Order Total: ₹%s\n", o.TotalAmount.String())

	if o.SpecialInstructions != "" {
		fmt.Fprintf(&b, "\nSpecial Instructions: %s\n", o.SpecialInstructions)
	}

	return subject, b.String()
}

// customerConfirmationMail composes the post-checkout confirmation.
func customerConfirmationMail(o *order.Order) (subject, body string) {
	subject = fmt.Sprintf("Order Confirmation - #%s", o.Number)

	var b strings.Builder
	b.WriteString("Thank you for your order!\n\n")
	fmt.Fprintf(&b, "Order Number: #%s\n", o.Number)
	fmt.Fprintf(&b, "Total Amount: ₹%s\n", o.TotalAmount.String())
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	b.WriteString("\nYour vendors have been notified and will contact you shortly.\n")

	return subject, b.String()
}
