package domain

// Event is a content page published under a community.
type Event struct {
	Entity
	Title         string `json:"title"`
	Description   string `json:"description"`
	Content       string `json:"content"`
	Slug          string `json:"slug"`
	Image         string `json:"image,omitempty"`
	ImageBlurhash string `json:"imageBlurhash,omitempty"`
	Published     bool   `json:"published"`
	UserID        string `json:"userId"`
	CommunityID   string `json:"communityId"`

	// Community is the parent, attached when the event is loaded through the
	// authorization gate.
	Community *Community `json:"community,omitempty"`
}

// Event field keys accepted by the field update dispatcher.
const (
	EventFieldTitle       = "title"
	EventFieldDescription = "description"
	EventFieldContent     = "content"
	EventFieldSlug        = "slug"
	EventFieldImage       = "image"
	EventFieldPublished   = "published"
)

// OwnedBy reports whether userID owns the event.
func (e *Event) OwnedBy(userID string) bool {
	return userID != "" && e.UserID == userID
}

// ParsePublished converts a form value into the published flag.
// Only the literal "true" publishes.
func ParsePublished(value string) bool {
	return value == "true"
}
