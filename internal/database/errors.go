package database

// ConfigurationError indicates invalid or conflicting connection
// configuration, detected before any connection attempt.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "mongo configuration error: " + e.Reason
}

// UnsupportedConfigurationError indicates configuration that the selected
// driver tier cannot honor, such as a connection URI on the legacy tier.
type UnsupportedConfigurationError struct {
	Reason string
}

func (e *UnsupportedConfigurationError) Error() string {
	return "unsupported mongo configuration: " + e.Reason
}
