package models

// Route is a client-side page of the booking app.
type Route string

const (
	RouteHome         Route = "/"
	RouteTickets      Route = "/tickets"
	RouteLockers      Route = "/locker-selection"
	RouteSummary      Route = "/summary"
	RouteCheckout     Route = "/checkout"
	RouteConfirmation Route = "/confirmation"
	RouteMyBookings   Route = "/my-bookings"
	RouteVisitorInfo  Route = "/visitor-info"
	RouteAdmin        Route = "/admin"
)

func (r Route) String() string {
	return string(r)
}
