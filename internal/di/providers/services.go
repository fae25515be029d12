package providers

import (
	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
	"github.com/gatherly/gatherly-server/internal/media/images"
	"github.com/gatherly/gatherly-server/internal/service"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// ProvideValidator provides the input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideGate provides the ownership gate.
func ProvideGate(i do.Injector) (*service.Gate, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewGate(storeHandle.Store), nil
}

// ProvideSideEffects provides the registrar and cache side effect runner.
func ProvideSideEffects(i do.Injector) (*service.SideEffects, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	registrarHandle := do.MustInvoke[*RegistrarHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return service.NewSideEffects(
		registrarHandle.Registrar,
		cacheHandle.Invalidator,
		cfg.Platform.SideEffectTimeout,
		log.Logger,
	), nil
}

// ProvideUploader provides the file field uploader.
func ProvideUploader(i do.Injector) (*service.Uploader, error) {
	log := do.MustInvoke[*logger.Logger](i)
	blobHandle := do.MustInvoke[*BlobHandle](i)
	analyzer := do.MustInvoke[*images.Analyzer](i)

	return service.NewUploader(blobHandle.Store, analyzer, log.Logger), nil
}

// ProvideCommunityService provides the community service.
func ProvideCommunityService(i do.Injector) (*service.CommunityService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewCommunityService(
		storeHandle.Store,
		do.MustInvoke[*service.Gate](i),
		do.MustInvoke[*service.Uploader](i),
		do.MustInvoke[*service.SideEffects](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.Platform.RootDomain,
		log.Logger,
	), nil
}

// ProvideEventService provides the event service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewEventService(
		storeHandle.Store,
		do.MustInvoke[*service.Gate](i),
		do.MustInvoke[*service.Uploader](i),
		do.MustInvoke[*service.SideEffects](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.Platform.RootDomain,
		log.Logger,
	), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return service.NewUserService(storeHandle.Store, v, log.Logger), nil
}

// ProvideSiteService provides the public site read service.
func ProvideSiteService(i do.Injector) (*service.SiteService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	return service.NewSiteService(storeHandle.Store, cacheHandle.Redis, cfg.Platform.RootDomain, log.Logger), nil
}
