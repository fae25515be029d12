package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/service"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List events",
		Description: "Lists the signed-in user's events, optionally within one community",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEvent",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}",
		Summary:     "Get event",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEvent",
		Method:      http.MethodPut,
		Path:        "/api/v1/events/{id}",
		Summary:     "Update event content",
		Description: "Replaces the title, description and content of an event",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteEvent",
		Method:      http.MethodDelete,
		Path:        "/api/v1/events/{id}",
		Summary:     "Delete event",
		Tags:        []string{"Events"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteEvent)
}

// EventIDInput identifies an event by path.
type EventIDInput struct {
	ID string `path:"id" doc:"Event ID"`
}

// ListEventsInput filters the event list.
type ListEventsInput struct {
	CommunityID string `query:"communityId" doc:"Only list events of this community"`
}

// UpdateEventRequest is the request body for replacing event content.
type UpdateEventRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty" doc:"Markdown body"`
}

// UpdateEventInput wraps the update event request.
type UpdateEventInput struct {
	ID   string `path:"id" doc:"Event ID"`
	Body UpdateEventRequest
}

// EventOutput wraps a single event.
type EventOutput struct {
	Body *domain.Event
}

// EventsOutput wraps an event list.
type EventsOutput struct {
	Body []*domain.Event
}

func (s *Server) handleListEvents(ctx context.Context, input *ListEventsInput) (*EventsOutput, error) {
	events, err := s.services.Events.List(ctx, input.CommunityID)
	if err != nil {
		return nil, err
	}
	return &EventsOutput{Body: events}, nil
}

func (s *Server) handleGetEvent(ctx context.Context, input *EventIDInput) (*EventOutput, error) {
	e, err := s.services.Events.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: e}, nil
}

func (s *Server) handleUpdateEvent(ctx context.Context, input *UpdateEventInput) (*EventOutput, error) {
	e, err := s.services.Events.UpdateContent(ctx, input.ID, service.UpdateEventRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Content:     input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: e}, nil
}

func (s *Server) handleDeleteEvent(ctx context.Context, input *EventIDInput) (*EventOutput, error) {
	e, err := s.services.Events.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: e}, nil
}
