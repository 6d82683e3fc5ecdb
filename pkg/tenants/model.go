package tenants

// Tenant is a logical club / organization whose branding and settings scope
// every request. Read-only from this layer; administrators manage rows
// out-of-band.
type Tenant struct {
	ID             string         `json:"id"` // uuid
	Slug           string         `json:"slug"`
	DisplayName    string         `json:"displayName"`
	LogoURL        string         `json:"logoUrl"`
	FaviconURL     string         `json:"faviconUrl"`
	PrimaryColor   string         `json:"primaryColor"`
	SecondaryColor string         `json:"secondaryColor"`
	AccentColor    string         `json:"accentColor"`
	Settings       map[string]any `json:"settings"` // feature flags, free-form config
	Active         bool           `json:"active"`
}

// Domain maps an inbound hostname to its owning tenant. Only verified
// domains are authoritative for resolution.
type Domain struct {
	ID       string
	TenantID string
	Domain   string
	Primary  bool
	Verified bool
}
