package bookings

// BookingListQuery holds filters for booking list endpoints
type BookingListQuery struct {
	Status   string `form:"status"`
	TourID   string `form:"tour_id"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}
