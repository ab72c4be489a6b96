// Package services defines the business logic for lead notifications and the
// reviews proxy. This file centralizes the service-level error values so
// handlers can classify failures with errors.Is.
//
// Handlers translate these into HTTP responses; the wrapped cause is for
// logs only and never reaches a client.
package services

import (
	"errors"

	"github.com/tbourn/hvac-site-backend/internal/mailer"
)

// Dispatch errors.
var (
	// ErrDispatch wraps any failure to deliver a lead notification.
	ErrDispatch = errors.New("notification dispatch failed")

	// ErrMailNotConfigured indicates no mail provider credentials are set.
	ErrMailNotConfigured = mailer.ErrNotConfigured

	// ErrUnknownLead is returned by Dispatcher.Send for an unsupported kind
	// or a payload that does not match it.
	ErrUnknownLead = errors.New("unknown lead kind")
)

// Reviews errors.
var (
	// ErrReviewsNotConfigured indicates the Places API key or place ID is
	// missing.
	ErrReviewsNotConfigured = errors.New("missing API key or place ID")

	// ErrReviewsUnavailable indicates the upstream could not be reached or
	// answered with something unreadable, and no cached copy exists.
	ErrReviewsUnavailable = errors.New("failed to fetch reviews")
)

// PlacesStatusError is returned when the Places API answers with a status
// other than OK.
type PlacesStatusError struct {
	Status  string
	Message string
}

func (e *PlacesStatusError) Error() string {
	if e.Message == "" {
		return "places: " + e.Status
	}
	return "places: " + e.Status + ": " + e.Message
}
