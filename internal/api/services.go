package api

import "github.com/gatherly/gatherly-server/internal/service"

// Services groups all business logic services used by the API server.
type Services struct {
	Communities *service.CommunityService
	Events      *service.EventService
	Users       *service.UserService
	Site        *service.SiteService
}
