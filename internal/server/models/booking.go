package models

import "time"

type Booking struct {
	ID            string    `json:"id"`
	BookingNumber string    `json:"booking_number"`
	Qty           int       `json:"qty"`
	Type          string    `json:"type"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
