package providers

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/samber/do/v2"

	"github.com/gatherly/gatherly-server/internal/config"
	"github.com/gatherly/gatherly-server/internal/logger"
	"github.com/gatherly/gatherly-server/internal/registrar"
)

// RegistrarHandle wraps the custom domain registrar with Shutdownable.
type RegistrarHandle struct {
	registrar.Registrar
}

// Shutdown implements do.Shutdownable.
func (h *RegistrarHandle) Shutdown() error {
	if v, ok := h.Registrar.(*registrar.Vercel); ok {
		v.Close()
	}
	return nil
}

// ProvideRegistrar provides the custom domain registrar.
func ProvideRegistrar(i do.Injector) (*RegistrarHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	rc := cfg.Registrar
	switch rc.Provider {
	case config.RegistrarVercel:
		log.Info("Domain registrar initialized", "provider", "vercel", "project_id", rc.VercelProjectID)
		return &RegistrarHandle{Registrar: registrar.NewVercel(registrar.VercelConfig{
			BaseURL:   rc.VercelBaseURL,
			Token:     rc.VercelAPIToken,
			ProjectID: rc.VercelProjectID,
			TeamID:    rc.VercelTeamID,
		}, log.Logger)}, nil

	case config.RegistrarRoute53:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(rc.Route53Region))
		if err != nil {
			return nil, fmt.Errorf("route53 config: %w", err)
		}
		log.Info("Domain registrar initialized", "provider", "route53", "hosted_zone_id", rc.Route53HostedZoneID)
		return &RegistrarHandle{Registrar: registrar.NewRoute53(
			route53.NewFromConfig(awsCfg), rc.Route53HostedZoneID, rc.Route53Target, log.Logger,
		)}, nil

	default:
		log.Warn("Domain registrar disabled, custom domains will not be attached")
		return &RegistrarHandle{Registrar: registrar.Noop{}}, nil
	}
}
