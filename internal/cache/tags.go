package cache

import "github.com/gatherly/gatherly-server/internal/domain"

// Tag suffixes shared by the read model and the invalidation trigger.
const (
	metadataSuffix = "-metadata"
	eventsSuffix   = "-events"
)

// MetadataTag tags cached community metadata served under host.
func MetadataTag(host string) string {
	return host + metadataSuffix
}

// EventsTag tags the cached event listing served under host.
func EventsTag(host string) string {
	return host + eventsSuffix
}

// EventTag tags a single cached event page served under host.
func EventTag(host, slug string) string {
	return host + "-" + slug
}

// CommunityTags returns the tags to clear after a community mutation:
// "{subdomain}.{root}-metadata" plus "{customDomain}-metadata" when set.
// c must carry the identity from before the mutation.
func CommunityTags(c *domain.Community, rootDomain string) []string {
	hosts := c.Hostnames(rootDomain)
	tags := make([]string, 0, len(hosts))
	for _, host := range hosts {
		tags = append(tags, MetadataTag(host))
	}
	return tags
}

// EventTags returns the tags to clear after a mutation of the event with
// slug under community c: the "-events" and "-{slug}" tags for every host.
func EventTags(c *domain.Community, slug, rootDomain string) []string {
	hosts := c.Hostnames(rootDomain)
	tags := make([]string, 0, 2*len(hosts))
	for _, host := range hosts {
		tags = append(tags, EventsTag(host), EventTag(host, slug))
	}
	return tags
}
