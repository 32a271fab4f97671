package main

import (
	"venue-booking/cmd"
)

// @title Venue Booking API
// @version 1.0
// @description Table availability, booking limits and waitlist allocation for a venue.

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	cmd.Execute()
}
