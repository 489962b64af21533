package checkout

import (
	"fmt"
	"sort"
	"strings"
)

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMobileMoney PaymentMethod = "mobile_money"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentMobileMoney
}

type BillingDetails struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	CompanyName     string `json:"company_name,omitempty"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	DeliveryAddress string `json:"delivery_address"`
	Country         string `json:"country"`
	State           string `json:"state"`
	Zipcode         string `json:"zipcode,omitempty"`
	Note            string `json:"note,omitempty"`
}

// FieldErrors maps a billing field to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid billing fields: %s", strings.Join(fields, ", "))
}

// Validate checks the required billing fields. A nil return means the form
// may be submitted.
func (b BillingDetails) Validate() FieldErrors {
	errs := FieldErrors{}
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = "required"
		}
	}
	require("first_name", b.FirstName)
	require("last_name", b.LastName)
	require("email", b.Email)
	require("phone_number", b.PhoneNumber)
	require("delivery_address", b.DeliveryAddress)
	require("country", b.Country)
	require("state", b.State)

	if _, ok := errs["email"]; !ok {
		at := strings.Index(b.Email, "@")
		if at < 1 || at == len(b.Email)-1 {
			errs["email"] = "invalid email address"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
