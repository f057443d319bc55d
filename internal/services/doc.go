// Package services implements the Spotify token lifecycle and the authenticated request executor.
//
// # Token Lifecycle
//
// [TokenManager] owns every credential write. It exchanges authorization
// codes during login, refreshes expired access tokens with the refresh_token
// grant, and deletes credentials on logout. All writes funnel through a
// single upsert keyed by session id.
//
// IsAuthenticated deliberately returns true whenever a credential exists,
// even when a triggered refresh fails. That mirrors the observable behavior
// this service always had: the caller does not retry, and a stale token
// simply surfaces later as an authorization error from Spotify. Refresh
// failures are logged, not raised.
//
// The refresh grant does not rotate the refresh token, so the stored value
// is preserved across refreshes.
//
// # Request Executor
//
// [SpotifyClient] builds authenticated requests against the Spotify Web API:
// base URL plus endpoint, Content-Type and Authorization headers, exactly one
// of GET/POST/PUT per call, single shot with no retry. Outbound calls pass
// through a [rate.Limiter].
//
// Transport and parse fragility is absorbed at this layer into the typed
// [shared.ErrAPIRequest] so callers branch on one recognizable condition
// instead of handling transport details. Calling the executor for a session
// with no credential is a precondition violation and returns
// [shared.ErrNoCredential]; callers are expected to have checked
// authentication first.
//
// # API Mappings
//
// Spotify JSON payloads are reshaped into models DTOs. Empty image lists and
// absent external URLs are omitted from the reshaped structs entirely, never
// emitted as null or empty values.
package services
