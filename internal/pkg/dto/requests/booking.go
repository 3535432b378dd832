package requests

type BookingCustomer struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile" validate:"required,phone_number"`
}

type BookingLineItem struct {
	Type     string `json:"type" validate:"required,item_type"`
	SKU      string `json:"sku" validate:"required,sku"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=100"`
	// Nights applies to rest_house items only.
	Nights int `json:"nights" validate:"gte=0,lte=60"`
}

type CreateBooking struct {
	Customer  BookingCustomer   `json:"customer" validate:"required"`
	LineItems []BookingLineItem `json:"line_items" validate:"required,min=1,max=50,dive"`
}

type CancelBooking struct {
	BookingID string `json:"-"`
	Reason    string `json:"reason" validate:"max=500"`
}

type Pagination struct {
	Page     int
	PageSize int
}

type ListBookings struct {
	PaymentStatus string `validate:"omitempty,oneof=pending paid failed cancelled"`
	Mobile        string `validate:"omitempty,phone_number"`
	Pagination
}
