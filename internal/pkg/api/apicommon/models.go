package apicommon

// APIError is the error envelope returned on every failed request. The
// message is the sole key of the body.
type APIError struct {
	Error string `json:"error"`
}

// CreatedResponse carries the identifier subset of a freshly created resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// VersionResponse is returned by the version route.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Identity is the authenticated caller, populated by the auth middleware
// before any protected handler runs.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
