package models

import (
	"strings"
	"time"
)

// OrderStatus is a stage of the order lifecycle
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusPreparing      OrderStatus = "Preparing"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{
	StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

// Preparing may skip straight to Delivered for orders handed over at the counter
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod identifies the bank the receipt was issued by
type PaymentMethod string

const (
	PaymentCBE      PaymentMethod = "cbe"
	PaymentBOA      PaymentMethod = "boa"
	PaymentTelebirr PaymentMethod = "telebirr"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCBE, PaymentBOA, PaymentTelebirr:
		return true
	}
	return false
}

// Review feedback values an admin can leave on a customer review
const (
	FeedbackHelpful    = "Helpful"
	FeedbackNotHelpful = "Not Helpful"
)

// DeliveryInfo is where and how the order should be delivered
type DeliveryInfo struct {
	Destination string `json:"destination" binding:"required"`
	Note        string `json:"note"`
}

// PaymentInfo references the proof of payment submitted at checkout
type PaymentInfo struct {
	Method     PaymentMethod `json:"method" binding:"required"`
	ReceiptRef string        `json:"receiptRef"`
}

// Order is an immutable snapshot of a checked-out cart plus its lifecycle state
type Order struct {
	ID                  string        `json:"id" gorm:"primaryKey"`
	UserID              string        `json:"userId" gorm:"index;not null"`
	LineItems           []OrderLine   `json:"lineItems" gorm:"foreignKey:OrderID"`
	Subtotal            int64         `json:"subtotal"`
	DeliveryFee         int64         `json:"deliveryFee"`
	TotalPrice          int64         `json:"totalPrice"`
	DeliveryDestination string        `json:"deliveryDestination"`
	DeliveryNote        string        `json:"deliveryNote,omitempty"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	PaymentReceiptRef   string        `json:"paymentReceiptRef"`
	Status              OrderStatus   `json:"status" gorm:"index;not null"`
	StatusHistory       []StatusEntry `json:"statusHistory" gorm:"foreignKey:OrderID"`
	Rating              *int          `json:"rating,omitempty"`
	ReviewComment       string        `json:"reviewComment,omitempty"`
	AdminFeedback       string        `json:"adminFeedback,omitempty"`
	CreatedAt           time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt           time.Time     `json:"updatedAt"`

	// Seq orders rows created within the same timestamp
	Seq int64 `json:"-" gorm:"index"`
}

// ShortID is the customer-facing reference printed in messages
func (o *Order) ShortID() string {
	return ShortID(o.ID)
}

// ShortID returns the last six characters of an order id in upper case
func ShortID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// OrderLine is one cart line frozen into an order
type OrderLine struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	OrderID  string `json:"-" gorm:"index;not null"`
	Position int    `json:"-"`
	CartLine
}

// StatusEntry is one row of an order's append-only audit trail
type StatusEntry struct {
	ID      uint        `json:"-" gorm:"primaryKey"`
	OrderID string      `json:"-" gorm:"index;not null"`
	Status  OrderStatus `json:"status"`
	At      time.Time   `json:"timestamp" gorm:"column:changed_at"`
}

// OrderFilter narrows an admin order listing
type OrderFilter struct {
	Status OrderStatus
	UserID string
	Limit  int
}

// OrderStats summarises orders for the admin dashboard
type OrderStats struct {
	Total    int64                 `json:"total"`
	ByStatus map[OrderStatus]int64 `json:"byStatus"`
	Active   int64                 `json:"active"`
	Revenue  int64                 `json:"revenue"`
}
