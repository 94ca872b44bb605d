package configs

// ServerConfigFile is the YAML configuration of the swarmdeck server.
type ServerConfigFile struct {
	Engine         EngineConfiguration  `yaml:"engine"`
	Storage        StoreConfiguration   `yaml:"storage"`
	Admin          AdminConfiguration   `yaml:"admin"`
	Session        SessionConfiguration `yaml:"session"`
	TrustedProxies []string             `yaml:"trusted-proxies"`
}

// EngineConfiguration locates the cluster control plane.
type EngineConfiguration struct {
	Host       string `yaml:"host"`
	APIVersion string `yaml:"api-version"`
}

// StoreConfiguration locates the console database.
type StoreConfiguration struct {
	Path string `yaml:"path"`
}

// AdminConfiguration is the account bootstrapped on an empty database.
type AdminConfiguration struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SessionConfiguration controls issued login tokens.
type SessionConfiguration struct {
	TTLHours int `yaml:"ttl-hours"`
}

// CLIOptions are the flags of the server binary.
type CLIOptions struct {
	Host     string
	HTTPPort uint16
	LogLevel string
}

// ServerConfig is the merged runtime configuration.
type ServerConfig struct {
	ConfigFile ServerConfigFile
	CliOpts    CLIOptions
}
