package dto

import (
	"customer-service/internal/domain/customer"
)

// CustomerRequest documents the accepted body for create and update. Handlers decode bodies
// generically so that missing and mistyped fields produce field-level messages.
type CustomerRequest struct {
	Name        string `json:"name" example:"Jane Doe"`
	Address     string `json:"address" example:"55 Washington Way"`
	PhoneNumber string `json:"phone_number" example:"555-156-1557"`
	Email       string `json:"email" example:"jane@example.com"`
	CreditCard  string `json:"credit_card" example:"VISA"`
}

type CustomerResponse struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Jane Doe"`
	Address     string `json:"address" example:"55 Washington Way"`
	PhoneNumber string `json:"phone_number" example:"555-156-1557"`
	Email       string `json:"email" example:"jane@example.com"`
	CreditCard  string `json:"credit_card" example:"VISA"`
	Active      bool   `json:"active" example:"true"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {

		return CustomerResponse{}
	}

	return CustomerResponse{
		ID:          cust.ID,
		Name:        cust.Name,
		Address:     cust.Address,
		PhoneNumber: cust.PhoneNumber,
		Email:       cust.Email,
		CreditCard:  cust.CreditCard,
		Active:      cust.Active,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, NewCustomerResponse(c))
	}
	return resp
}
