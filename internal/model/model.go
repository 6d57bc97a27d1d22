package model

// StudentPayment is one normalized roster row. Amount and Date are
// display-ready strings; AmountValue keeps the numeric amount when the
// source cell was numeric (nil otherwise).
type StudentPayment struct {
	Name          string
	Email         string
	Amount        string
	AmountValue   *float64
	Date          string
	PaymentMethod string
	ReceiptNumber string // R-%04d of the 1-based sheet row
}
