package domain

// Tunnel is the central entity: a named mapping from a public hostname to a
// local service, brokered through cloudflared.
type Tunnel struct {
	// Name is unique per host and matches ^[A-Za-z0-9-]+$.
	Name string `json:"name"`

	// RemoteID is the opaque identifier assigned by cloudflared at creation.
	// It is never invented locally, only read back from creation output.
	RemoteID string `json:"remote_id"`

	// Port is the local service the tunnel forwards to, in [1, 65535].
	Port int `json:"port"`

	// Subdomain matches ^[A-Za-z0-9-]+$ and combines with the configured
	// base domain to form Hostname.
	Subdomain string `json:"subdomain"`

	// Hostname is the public name, persisted at create time so DNS cleanup
	// does not depend on re-parsing the config artifact.
	Hostname string `json:"hostname"`

	// ConfigPath is the persisted config artifact path, derived from Name.
	ConfigPath string `json:"config_path"`

	// ServiceInstalled reports whether a systemd unit exists for this tunnel.
	ServiceInstalled bool `json:"service_installed"`
}

// IngressRule maps an inbound hostname to a target service. The terminal
// rule has no hostname and a catch-all service.
type IngressRule struct {
	Hostname string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Service  string `yaml:"service" json:"service"`
}

// TunnelConfig is the persisted per-tunnel configuration artifact, in the
// layout cloudflared expects.
type TunnelConfig struct {
	TunnelID        string        `yaml:"tunnel" json:"tunnel"`
	CredentialsFile string        `yaml:"credentials-file" json:"credentials_file"`
	Ingress         []IngressRule `yaml:"ingress" json:"ingress"`
}

// RemoteTunnel is one record of cloudflared's own tunnel listing, passed
// through without local validation.
type RemoteTunnel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CreatedAt   string   `json:"created_at"`
	DeletedAt   string   `json:"deleted_at,omitempty"`
	Connections []string `json:"connections,omitempty"`
}

// DNSRecord references a remote record owned by the DNS provider. Hostname
// is the lookup key, ID the deletion key.
type DNSRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}
