package customer

import "time"

// Customer is a customer profile record. The validate tags mirror the customers table column limits.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"max=63"`
	Address     string    `json:"address" validate:"required,max=256"`
	PhoneNumber string    `json:"phone_number" validate:"required,max=63"`
	Email       string    `json:"email" validate:"required,max=63"`
	CreditCard  string    `json:"credit_card" validate:"required,max=63"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func NewCustomer(name, address, phoneNumber, email, creditCard string) *Customer {
	now := time.Now()
	return &Customer{
		Name:        name,
		Address:     address,
		PhoneNumber: phoneNumber,
		Email:       email,
		CreditCard:  creditCard,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Customer) Activate() {
	if !c.Active {
		c.Active = true
		c.UpdatedAt = time.Now()
	}
}

func (c *Customer) Deactivate() {
	if c.Active {
		c.Active = false
		c.UpdatedAt = time.Now()
	}
}

// SetActive applies the activate or deactivate transition. Both are idempotent.
func (c *Customer) SetActive(active bool) {
	if active {
		c.Activate()
	} else {
		c.Deactivate()
	}
}
