package domain

import (
	taxdomain "github.com/smallbiznis/orderdesk/internal/tax/domain"
)

const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
)

// Header holds the order-level fields. Dates are DD-MM-YYYY.
type Header struct {
	OrderNumber   string `json:"order_number"`
	OrderDate     string `json:"order_date"`
	VoucherType   string `json:"voucher_type"`
	Status        string `json:"status"`
	Executive     string `json:"executive,omitempty"`
	CustomerCode  string `json:"customer_code,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerState string `json:"customer_state,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
}

// Line is one item row. The embedded tax line carries the numbers.
type Line struct {
	ID       string `json:"id,omitempty"`
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	HSN      string `json:"hsn,omitempty"`
	UOM      string `json:"uom,omitempty"`

	taxdomain.Line

	DeliveryDate string `json:"delivery_date,omitempty"`
	DeliveryMode string `json:"delivery_mode,omitempty"`
}

type Order struct {
	Header
	Lines        []Line                 `json:"lines"`
	Totals       taxdomain.Totals       `json:"totals"`
	Jurisdiction taxdomain.Jurisdiction `json:"jurisdiction"`
}

// Draft is a freshly initialized order header. NumberIssued is false when
// the backend could not issue a number and a local fallback was used.
type Draft struct {
	Order
	NumberIssued bool `json:"number_issued"`
}

type SubmitResult struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message,omitempty"`
}
