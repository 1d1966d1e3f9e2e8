// Package common contains shared constants and sentinel errors used across
// LogiTrack components.
package common

// AccessTokenHeaderName is the gRPC metadata key (and websocket query
// parameter) used to carry the access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultAdminEmail is the account that receives the Admin role on first
// sign-in unless overridden in server configuration.
const DefaultAdminEmail = "admin@logitrack.com"
