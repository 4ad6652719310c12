package dto

import "github.com/spec-kit/console-client/internal/domain"

// SiteConfigResponse mirrors GET /api/public/site-config.
type SiteConfigResponse struct {
	SiteName              string           `json:"site_name"`
	SiteDescription       string           `json:"site_description"`
	OAuth                 *OAuthFlags      `json:"oauth"`
	AllowPasswordRegister *bool            `json:"allow_password_register"`
	CurrencySymbol        string           `json:"currency_symbol"`
	FOSSBilling           *FOSSBillingInfo `json:"fossbilling"`
}

// OAuthFlags reports configured providers.
type OAuthFlags struct {
	Github  bool `json:"github"`
	Google  bool `json:"google"`
	Nodeloc bool `json:"nodeloc"`
}

// FOSSBillingInfo describes the billing portal integration.
type FOSSBillingInfo struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// ToDomain applies defaults for every field the server left out.
// Only an explicit false disables password registration.
func (r SiteConfigResponse) ToDomain() domain.SiteConfig {
	cfg := domain.DefaultSiteConfig()
	cfg.SiteName = r.SiteName
	cfg.SiteDescription = r.SiteDescription
	if r.OAuth != nil {
		cfg.OAuth = domain.OAuthAvailability{Github: r.OAuth.Github, Google: r.OAuth.Google, Nodeloc: r.OAuth.Nodeloc}
	}
	if r.AllowPasswordRegister != nil {
		cfg.AllowPasswordRegister = *r.AllowPasswordRegister
	}
	if r.CurrencySymbol != "" {
		cfg.CurrencySymbol = r.CurrencySymbol
	}
	if r.FOSSBilling != nil {
		cfg.Billing = domain.BillingIntegration{Enabled: r.FOSSBilling.Enabled, URL: r.FOSSBilling.URL}
	}
	return cfg
}
