package dto

// CreateCustomerRequest entrada para crear un cliente.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=150"`
	Phone string `json:"phone" validate:"max=50"`
	TaxID string `json:"tax_id" validate:"max=50"`
	Note  string `json:"note"`
}

// UpdateCustomerRequest entrada para actualizar un cliente (campos opcionales).
type UpdateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=150"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	TaxID *string `json:"tax_id" validate:"omitempty,max=50"`
	Note  *string `json:"note"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	TaxID string `json:"tax_id"`
	Note  string `json:"note"`
}
