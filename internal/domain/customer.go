package domain

import "time"

// Customer is a buyer recorded by a weaver. The id is chosen by the client
// or generated on first save.
type Customer struct {
	ID            string       `json:"id"`
	Owner         string       `json:"owner"`
	Name          string       `json:"name"`
	ContactNumber string       `json:"contact_number"`
	CustomerType  CustomerType `json:"customer_type"`
	BusinessName  *string      `json:"business_name,omitempty"`
	AddressLine1  *string      `json:"address_line1,omitempty"`
	City          *string      `json:"city,omitempty"`
	State         *string      `json:"state,omitempty"`
	PostalCode    *string      `json:"postal_code,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
