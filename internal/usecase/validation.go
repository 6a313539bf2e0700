package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
)

// ValidateCart checks everything a booking request needs before any
// network call is made.
func ValidateCart(cart model.Cart) error {
	if len(cart.Items) == 0 {
		return domainErrors.NewValidation("items", "cart is empty")
	}

	seen := make(map[string]struct{}, len(cart.Items))
	for i, item := range cart.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ID) == "" {
			return domainErrors.NewValidation(field+".id", "must not be empty")
		}
		if _, dup := seen[item.ID]; dup {
			return domainErrors.NewValidation(field+".id", "duplicate line item "+item.ID)
		}
		seen[item.ID] = struct{}{}
		if strings.TrimSpace(item.VendorID) == "" {
			return domainErrors.NewValidation(field+".vendor_id", "must not be empty")
		}
		if item.UnitPrice <= 0 {
			return domainErrors.NewValidation(field+".unit_price", "must be positive")
		}
	}

	return validateContact(cart.Customer, cart.Event)
}

func validateContact(c model.Customer, e model.EventDetails) error {
	if strings.TrimSpace(c.Name) == "" {
		return domainErrors.NewValidation("customer.name", "must not be empty")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return domainErrors.NewValidation("customer.email", "must be a valid address")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return domainErrors.NewValidation("customer.phone", "must not be empty")
	}
	if strings.TrimSpace(e.Type) == "" {
		return domainErrors.NewValidation("event.type", "must not be empty")
	}
	if e.Date.IsZero() {
		return domainErrors.NewValidation("event.date", "must be set")
	}
	if e.GuestCount < 1 {
		return domainErrors.NewValidation("event.guest_count", "must be at least 1")
	}
	return nil
}
