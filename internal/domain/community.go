package domain

// Font identifies the typeface a community site renders with.
type Font string

const (
	FontCal  Font = "font-cal"
	FontLora Font = "font-lora"
	FontWork Font = "font-work"
)

// DefaultFont is assigned to new communities.
const DefaultFont = FontCal

// Community is a tenant site, addressed by a subdomain of the platform root
// domain and optionally by a custom domain.
type Community struct {
	Entity
	Name          string `json:"name"`
	Description   string `json:"description"`
	Subdomain     string `json:"subdomain"`
	CustomDomain  string `json:"customDomain,omitempty"`
	Image         string `json:"image,omitempty"`
	ImageBlurhash string `json:"imageBlurhash,omitempty"`
	Logo          string `json:"logo,omitempty"`
	Font          Font   `json:"font"`
	Message404    string `json:"message404,omitempty"`
	UserID        string `json:"userId"`
}

// Community field keys accepted by the field update dispatcher.
const (
	CommunityFieldName         = "name"
	CommunityFieldDescription  = "description"
	CommunityFieldSubdomain    = "subdomain"
	CommunityFieldCustomDomain = "customDomain"
	CommunityFieldImage        = "image"
	CommunityFieldLogo         = "logo"
	CommunityFieldFont         = "font"
	CommunityFieldMessage404   = "message404"
)

// OwnedBy reports whether userID owns the community.
func (c *Community) OwnedBy(userID string) bool {
	return userID != "" && c.UserID == userID
}

// Hostname returns the platform hostname of the community, e.g. "demo.gatherly.app".
func (c *Community) Hostname(rootDomain string) string {
	return c.Subdomain + "." + rootDomain
}

// HasCustomDomain reports whether a custom domain is configured.
func (c *Community) HasCustomDomain() bool {
	return c.CustomDomain != ""
}

// Hostnames returns every hostname the community is served under:
// the platform hostname first, then the custom domain if set.
func (c *Community) Hostnames(rootDomain string) []string {
	hosts := []string{c.Hostname(rootDomain)}
	if c.HasCustomDomain() {
		hosts = append(hosts, c.CustomDomain)
	}
	return hosts
}
