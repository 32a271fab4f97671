// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/public/availability": {"get": {"tags": ["Table"], "summary": "Bookable slots for a date, time and party size"}},
        "/private/risk/validate": {"post": {"security": [{"BearerAuth": []}], "tags": ["Risk"], "summary": "Score a booking request against the caller's limits"}},
        "/private/bookings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Booking"], "summary": "List my bookings"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Booking"], "summary": "Book a table"}
        },
        "/private/bookings/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Booking"], "summary": "Get one of my bookings"}},
        "/private/bookings/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["Booking"], "summary": "Cancel a booking"}},
        "/private/waitlist": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Waitlist"], "summary": "List my waitlist entries"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Waitlist"], "summary": "Join waitlist"}
        },
        "/private/waitlist/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Waitlist"], "summary": "Get waitlist entry with queue position"}},
        "/private/waitlist/{id}/convert": {"post": {"security": [{"BearerAuth": []}], "tags": ["Waitlist"], "summary": "Confirm a waitlist offer"}},
        "/private/waitlist/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["Waitlist"], "summary": "Cancel a waitlist entry"}},
        "/private/notifications": {"get": {"security": [{"BearerAuth": []}], "tags": ["Notification"], "summary": "List my notifications"}},
        "/private/notifications/unread-count": {"get": {"security": [{"BearerAuth": []}], "tags": ["Notification"], "summary": "Count unread notifications"}},
        "/private/notifications/mark-read": {"put": {"security": [{"BearerAuth": []}], "tags": ["Notification"], "summary": "Mark notifications as read"}},
        "/private/notifications/mark-all-read": {"put": {"security": [{"BearerAuth": []}], "tags": ["Notification"], "summary": "Mark all notifications as read"}},
        "/admin/tables": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "List tables"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Create a table"}
        },
        "/admin/tables/{id}/status": {"put": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Set table status"}},
        "/admin/slots/freed": {"post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Offer a freed slot to the waitlist"}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7070",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Venue Booking API",
	Description:      "Table availability, booking limits and waitlist allocation for a venue.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
