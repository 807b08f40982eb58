// Package auth provides bearer token authentication for fiber applications:
// a named JWT strategy that resolves the token subject back to a stored user,
// and a token issuer that verifies a submitted password against a bcrypt hash
// before minting a short lived HS256 token.
//
// Strategies:
//   - Strategies are registered on an explicit Registry value rather than a
//     process wide singleton. Build the registry once at startup, call
//     Initialize, and mount Registry.Authenticate(StrategyName) on the routes
//     that need an authenticated user.
//   - JWTStrategy extracts the token (Authorization: Bearer <token> by
//     default), validates signature and expiry, and asks the UserFinder for
//     the user identified by the "id" claim. A missing user is not an error:
//     the request is rejected as unauthenticated.
//
// Token issuance:
//   - TokenIssuer.CreateUserToken returns ErrInvalidCredentials (status 422)
//     when the user is absent, the password is empty, or the hash does not
//     match. Any other failure is internal and maps to a 500 response.
//   - The same signing key feeds both the TokenService used by the issuer and
//     the validator used by the strategy. Build both from a single Config.
package auth
