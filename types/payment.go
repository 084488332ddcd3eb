package types

import "time"

// AdvancePayment is an up-front customer payment for a trip, split into
// reserve/operating/business shares at receipt. Rows are immutable once
// created; the split amounts are computed with the trip's reserve percentage
// at that moment and never recalculated.
type AdvancePayment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	TripID            string    `json:"tripId"`
	ParticipantID     *string   `json:"participantId,omitempty"`
	Amount            float64   `json:"amount"`
	TripReserveAmount float64   `json:"tripReserveAmount"`
	OperatingAmount   float64   `json:"operatingAmount"`
	BusinessAmount    float64   `json:"businessAmount"`
	Note              string    `json:"note,omitempty"`
	PaidAt            time.Time `json:"paidAt"`
	CreatedAt         time.Time `json:"createdAt"`
}

type CreateAdvancePaymentParams struct {
	TripID        string     `json:"tripId"`
	ParticipantID *string    `json:"participantId,omitempty"`
	Amount        float64    `json:"amount"`
	Note          string     `json:"note,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// AdvanceSplit is the result of splitting an advance into the three shares.
// The three amounts always sum exactly to the original amount.
type AdvanceSplit struct {
	TripReserveAmount float64 `json:"tripReserveAmount"`
	OperatingAmount   float64 `json:"operatingAmount"`
	BusinessAmount    float64 `json:"businessAmount"`
}
