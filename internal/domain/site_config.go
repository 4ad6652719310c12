package domain

// DefaultCurrencySymbol is shown until the backend supplies its own symbol.
const DefaultCurrencySymbol = "NL"

// OAuthAvailability reports which providers the backend has configured.
type OAuthAvailability struct {
	Github  bool
	Google  bool
	Nodeloc bool
}

// Enabled reports whether the given provider is configured.
func (o OAuthAvailability) Enabled(p OAuthProvider) bool {
	switch p {
	case OAuthGithub:
		return o.Github
	case OAuthGoogle:
		return o.Google
	case OAuthNodeloc:
		return o.Nodeloc
	default:
		return false
	}
}

// BillingIntegration describes the external billing portal, if any.
type BillingIntegration struct {
	Enabled bool
	URL     string
}

// SiteConfig is the public site configuration consumed by presentation layers.
type SiteConfig struct {
	SiteName              string
	SiteDescription       string
	OAuth                 OAuthAvailability
	AllowPasswordRegister bool
	CurrencySymbol        string
	Billing               BillingIntegration
}

// DefaultSiteConfig returns the snapshot used before the first successful fetch.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		AllowPasswordRegister: true,
		CurrencySymbol:        DefaultCurrencySymbol,
	}
}
