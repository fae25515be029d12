// Package di provides dependency injection configuration for the Gatherly server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/di/providers"
	"github.com/gatherly/gatherly-server/internal/logger"
	"github.com/gatherly/gatherly-server/internal/media/images"
	"github.com/gatherly/gatherly-server/internal/service"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideBlobStore)
	do.Provide(injector, providers.ProvideImageAnalyzer)

	// Platform integrations
	do.Provide(injector, providers.ProvideRegistrar)
	do.Provide(injector, providers.ProvideCache)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideGitHub)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideGate)
	do.Provide(injector, providers.ProvideSideEffects)
	do.Provide(injector, providers.ProvideUploader)
	do.Provide(injector, providers.ProvideCommunityService)
	do.Provide(injector, providers.ProvideEventService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideSiteService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.BlobHandle](injector)
	_ = do.MustInvoke[*images.Analyzer](injector)
	_ = do.MustInvoke[*providers.RegistrarHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.GitHubHandle](injector)

	// Business services
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.Gate](injector)
	_ = do.MustInvoke[*service.SideEffects](injector)
	_ = do.MustInvoke[*service.Uploader](injector)
	_ = do.MustInvoke[*service.CommunityService](injector)
	_ = do.MustInvoke[*service.EventService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.SiteService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
