// Package services defines the [Service] interface for the Spotify Web API and the workflows built directly on it.
//
// # Service Interface
//
// A [Service] is bound to a single bearer token. A [Connector] produces one per request, so nothing token-related
// outlives the request that supplied it.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. The token is attached by an [oauth2.StaticTokenSource] transport;
// there is no refresh handling.
//
// # Authorization
//
// [Authenticator] builds the authorize URL and exchanges codes for tokens. Client credentials travel in the form
// body of the token request.
//
// # Top Items
//
// [Collector] validates a top items query, fetches one page and reshapes each entry:
//   - Tracks are named after their album and use the album's first artist and first image
//   - Artists use their first image and follower total
//
// An entry without images fails the whole call with [shared.ErrRemoteAPI].
//
// # Error Handling
//
//   - [shared.ErrValidation] : a caller-supplied parameter is missing or malformed ([shared.ValidationError])
//   - [shared.ErrRemoteAPI] : a Spotify request failed or returned an unusable payload
//   - [shared.ErrTokenExchange] : the authorization code could not be exchanged
package services
