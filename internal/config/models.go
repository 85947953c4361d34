package config

// GmailConfig represents the configuration for the Gmail mailbox surface
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	User            string
	Query           string
	FilteredLabel   string
	BatchSize       int
}

// ServerConfig represents the configuration for the SMTP filter surface
type ServerConfig struct {
	ListenAddress string
	StatusHeader  string
	ConfHeader    string
	ReasonHeader  string
	RulesHeader   string
	SubjectPrefix string
	ModifySubject bool
	RelayAddress  string
	RelayPort     int
	RelayEnabled  bool
}

// EngineConfig represents the configuration for the classification service
type EngineConfig struct {
	TrustedDomains []string
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsFile: c.GetString("gmail.credentials_file"),
		TokenFile:       c.GetString("gmail.token_file"),
		User:            c.GetString("gmail.user"),
		Query:           c.GetString("gmail.query"),
		FilteredLabel:   c.GetString("gmail.filtered_label"),
		BatchSize:       c.GetInt("gmail.batch_size"),
	}
}

// GetServer returns the SMTP filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		StatusHeader:  c.GetString("server.headers.status"),
		ConfHeader:    c.GetString("server.headers.confidence"),
		ReasonHeader:  c.GetString("server.headers.reason"),
		RulesHeader:   c.GetString("server.headers.rules"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		ModifySubject: c.GetBool("server.modify_subject"),
		RelayAddress:  c.GetString("server.relay.address"),
		RelayPort:     c.GetInt("server.relay.port"),
		RelayEnabled:  c.GetBool("server.relay.enabled"),
	}
}

// GetEngine returns the classification service configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		TrustedDomains: c.GetStringSlice("engine.trusted_domains"),
	}
}
