// Package services defines the [Provider] interface for lyrics providers and implements it for Genius.
//
// # Genius Implementation
//
// [GeniusService] authenticates every request with a bearer token through an [oauth2.StaticTokenSource]
// client, so the token never has to be threaded through call sites.
//
// Requests are spaced by a fixed delay using a [rate.Limiter] with a burst of one. The limiter is shared by
// search, song listing and page fetches, so every request the pipeline makes honours the same courtesy delay.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNetwork] : transport failure, HTTP 429 or 5xx; callers decide whether to skip or abort
//   - [shared.ErrAPIRequest] : any other non-2xx status or an undecodable payload
//
// Context cancellation is returned unwrapped so callers can tell an interrupt from a provider failure.
package services
