package dtos

type ApplyRequest struct {
	Message string `json:"message"`
}

type WithdrawRequest struct {
	Reason string `json:"reason"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type JobCreationRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional fields
	Category            *string  `json:"category"`
	WageHourly          *float64 `json:"wage_hourly"`
	MarketID            *string  `json:"market_id"`
	PublicLocationLabel *string  `json:"public_location_label"`
	Publish             bool     `json:"publish"`
}
