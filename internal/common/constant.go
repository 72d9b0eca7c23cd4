package common

// AuthorizationHeader is the HTTP header used to carry the access token
// on outbound API requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix prefixes the access token inside AuthorizationHeader.
const BearerPrefix = "Bearer "
