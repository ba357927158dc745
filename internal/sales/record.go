// internal/sales/record.go
package sales

import "time"

// Record is one normalized sales transaction. Numeric and date fields are
// pointers so that a malformed source value degrades to absent instead of
// aborting the row.
type Record struct {
	TransactionID      string
	Date               *time.Time
	RawDate            string // original string kept for display when Date is absent
	CustomerID         string
	CustomerName       string
	PhoneNumber        string
	Gender             string
	Age                *int
	CustomerRegion     string
	CustomerType       string
	ProductID          string
	ProductName        string
	Brand              string
	ProductCategory    string
	Tags               []string
	Quantity           *int
	PricePerUnit       *float64
	DiscountPercentage *float64
	TotalAmount        *float64
	FinalAmount        *float64
	PaymentMethod      string
	OrderStatus        string
	DeliveryType       string
	StoreID            string
	StoreLocation      string
	SalespersonID      string
	EmployeeName       string
}

// View is the fixed projection of a Record surfaced to clients. Every storage
// backend must return exactly these fields.
type View struct {
	TransactionID   string   `json:"transactionId"`
	Date            string   `json:"date"`
	CustomerID      string   `json:"customerId"`
	CustomerName    string   `json:"customerName"`
	PhoneNumber     string   `json:"phoneNumber"`
	Gender          string   `json:"gender"`
	Age             *int     `json:"age"`
	ProductCategory string   `json:"productCategory"`
	Quantity        *int     `json:"quantity"`
	TotalAmount     *float64 `json:"totalAmount"`
	CustomerRegion  string   `json:"customerRegion"`
	ProductID       string   `json:"productId"`
	EmployeeName    string   `json:"employeeName"`
}

// Project maps a Record onto the transport projection. The date is RFC3339
// when parsed, otherwise the retained raw string.
func Project(r *Record) View {
	date := r.RawDate
	if r.Date != nil {
		date = r.Date.UTC().Format(time.RFC3339)
	}

	return View{
		TransactionID:   r.TransactionID,
		Date:            date,
		CustomerID:      r.CustomerID,
		CustomerName:    r.CustomerName,
		PhoneNumber:     r.PhoneNumber,
		Gender:          r.Gender,
		Age:             r.Age,
		ProductCategory: r.ProductCategory,
		Quantity:        r.Quantity,
		TotalAmount:     r.TotalAmount,
		CustomerRegion:  r.CustomerRegion,
		ProductID:       r.ProductID,
		EmployeeName:    r.EmployeeName,
	}
}
