package kafka

const (
	TopicBookingConfirmed = "booking.confirmed"
	TopicPaymentFailed    = "booking.payment_failed"
)
