package registry

// Form is the provider payload as submitted by the console. Which fields
// are required depends on the provider kind; JSON keys are matched
// case-insensitively by the decoder, so clients may submit any casing.
type Form struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Public   bool   `json:"public"`

	// ecr
	Region          string `json:"region"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`

	// acr
	ServiceName string `json:"serviceName"`

	// gitlab
	Token string `json:"token"`
}
