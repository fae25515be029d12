package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/api"
	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
	"github.com/gatherly/gatherly-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Stop()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	blobHandle := do.MustInvoke[*BlobHandle](i)
	githubHandle := do.MustInvoke[*GitHubHandle](i)

	services := &api.Services{
		Communities: do.MustInvoke[*service.CommunityService](i),
		Events:      do.MustInvoke[*service.EventService](i),
		Users:       do.MustInvoke[*service.UserService](i),
		Site:        do.MustInvoke[*service.SiteService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		Tokens:           do.MustInvoke[*auth.TokenService](i),
		GitHub:           githubHandle.GitHubSignIn,
		Blobs:            blobHandle.Local,
		SSE:              sseHandle.Manager,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		LoginRedirectURL: cfg.Auth.LoginRedirectURL,
		SecureCookies:    cfg.App.Environment == "production",
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "root_domain", cfg.Platform.RootDomain)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
