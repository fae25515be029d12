package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/service"
)

func (s *Server) registerSiteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSite",
		Method:      http.MethodGet,
		Path:        "/api/v1/sites/{host}",
		Summary:     "Get site metadata",
		Description: "Resolves a subdomain or custom domain to its community",
		Tags:        []string{"Sites"},
	}, s.handleGetSite)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSiteEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/sites/{host}/events",
		Summary:     "List published events",
		Tags:        []string{"Sites"},
	}, s.handleListSiteEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSiteEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/sites/{host}/events/{slug}",
		Summary:     "Get published event",
		Description: "Returns a published event with its community and sibling events",
		Tags:        []string{"Sites"},
	}, s.handleGetSiteEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSitemap",
		Method:      http.MethodGet,
		Path:        "/api/v1/sites/{host}/sitemap",
		Summary:     "Get sitemap entries",
		Tags:        []string{"Sites"},
	}, s.handleGetSitemap)
}

// SiteInput identifies a site by host.
type SiteInput struct {
	Host string `path:"host" doc:"Subdomain host or custom domain"`
}

// SiteEventInput identifies an event on a site.
type SiteEventInput struct {
	Host string `path:"host" doc:"Subdomain host or custom domain"`
	Slug string `path:"slug" doc:"Event slug"`
}

// SiteEventOutput wraps a rendered event page.
type SiteEventOutput struct {
	Body *service.EventPage
}

// SitemapOutput wraps sitemap entries.
type SitemapOutput struct {
	Body []service.SitemapEntry
}

func (s *Server) handleGetSite(ctx context.Context, input *SiteInput) (*CommunityOutput, error) {
	c, err := s.services.Site.GetCommunityData(ctx, input.Host)
	if err != nil {
		return nil, err
	}
	return &CommunityOutput{Body: c}, nil
}

func (s *Server) handleListSiteEvents(ctx context.Context, input *SiteInput) (*EventsOutput, error) {
	events, err := s.services.Site.GetEventsForCommunity(ctx, input.Host)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return &EventsOutput{Body: events}, nil
}

func (s *Server) handleGetSiteEvent(ctx context.Context, input *SiteEventInput) (*SiteEventOutput, error) {
	page, err := s.services.Site.GetEventData(ctx, input.Host, input.Slug)
	if err != nil {
		return nil, err
	}
	return &SiteEventOutput{Body: page}, nil
}

func (s *Server) handleGetSitemap(ctx context.Context, input *SiteInput) (*SitemapOutput, error) {
	entries, err := s.services.Site.Sitemap(ctx, input.Host)
	if err != nil {
		return nil, err
	}
	return &SitemapOutput{Body: entries}, nil
}
