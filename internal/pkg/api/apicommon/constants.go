package apicommon

// APIBasePath is the base path for the console API.
const APIBasePath = "api"

// ContextKeyIdentity is the gin context key under which the auth middleware
// stores the authenticated caller.
const ContextKeyIdentity = "swarmdeck-identity"

// RoleAdmin and RoleUser are the two console roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ParamRegistryType is the path parameter carrying the registry provider tag.
const ParamRegistryType = "registryType"
