package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/service"
)

func (s *Server) registerCommunityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCommunity",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities",
		Summary:       "Create community",
		Description:   "Creates a community owned by the signed-in user",
		Tags:          []string{"Communities"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCommunity)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCommunities",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities",
		Summary:     "List communities",
		Description: "Lists the communities owned by the signed-in user",
		Tags:        []string{"Communities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCommunities)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCommunity",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}",
		Summary:     "Get community",
		Tags:        []string{"Communities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCommunity)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCommunity",
		Method:      http.MethodDelete,
		Path:        "/api/v1/communities/{id}",
		Summary:     "Delete community",
		Description: "Deletes a community with its events and releases its custom domain",
		Tags:        []string{"Communities"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCommunity)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCommunityEvent",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities/{id}/events",
		Summary:       "Create event",
		Description:   "Creates an unpublished event with a random slug",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCommunityEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}/events",
		Summary:     "List community events",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCommunityEvents)
}

// CommunityIDInput identifies a community by path.
type CommunityIDInput struct {
	ID string `path:"id" doc:"Community ID"`
}

// CreateCommunityRequest is the request body for creating a community.
type CreateCommunityRequest struct {
	Name        string `json:"name,omitempty" doc:"Display name"`
	Description string `json:"description,omitempty" doc:"Short description"`
	Subdomain   string `json:"subdomain" doc:"Subdomain under the platform root domain"`
}

// CreateCommunityInput wraps the create community request.
type CreateCommunityInput struct {
	Body CreateCommunityRequest
}

// CommunityOutput wraps a single community.
type CommunityOutput struct {
	Body *domain.Community
}

// CommunitiesOutput wraps a community list.
type CommunitiesOutput struct {
	Body []*domain.Community
}

func (s *Server) handleCreateCommunity(ctx context.Context, input *CreateCommunityInput) (*CommunityOutput, error) {
	c, err := s.services.Communities.Create(ctx, service.CreateCommunityRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Subdomain:   input.Body.Subdomain,
	})
	if err != nil {
		return nil, err
	}
	return &CommunityOutput{Body: c}, nil
}

func (s *Server) handleListCommunities(ctx context.Context, _ *struct{}) (*CommunitiesOutput, error) {
	communities, err := s.services.Communities.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CommunitiesOutput{Body: communities}, nil
}

func (s *Server) handleGetCommunity(ctx context.Context, input *CommunityIDInput) (*CommunityOutput, error) {
	c, err := s.services.Communities.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CommunityOutput{Body: c}, nil
}

func (s *Server) handleDeleteCommunity(ctx context.Context, input *CommunityIDInput) (*CommunityOutput, error) {
	c, err := s.services.Communities.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CommunityOutput{Body: c}, nil
}

func (s *Server) handleCreateEvent(ctx context.Context, input *CommunityIDInput) (*EventOutput, error) {
	e, err := s.services.Events.Create(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: e}, nil
}

func (s *Server) handleListCommunityEvents(ctx context.Context, input *CommunityIDInput) (*EventsOutput, error) {
	events, err := s.services.Events.List(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EventsOutput{Body: events}, nil
}
