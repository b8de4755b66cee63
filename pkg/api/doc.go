// Package api is the client for the family records backend.
//
// The backend exposes a small REST surface:
//
//	GET  /api/details/{id}/network   immediate family of one person
//	GET  /api/details/search         partial matches by name or location
//	POST /api/details/add            create from the flat payload
//	PUT  /api/details/{id}           update from the flat payload
//	POST /api/images/upload          multipart avatar upload
//
// Responses map to structured errors: 404 is NOT_FOUND, 429 RATE_LIMITED and
// every other failure NETWORK_FETCH_FAILED. Requests are made once unless
// [Options.Retries] asks for more. Search results are cached briefly.
package api
