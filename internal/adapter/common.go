package adapter

import (
	"context"
	"fmt"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/internal/dispatch"
	"github.com/imposter-project/imposter-expect/internal/expectation"
	"github.com/imposter-project/imposter-expect/internal/forward"
	"github.com/imposter-project/imposter-expect/internal/handler"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/internal/store"
	"github.com/imposter-project/imposter-expect/internal/system"
	"github.com/imposter-project/imposter-expect/internal/version"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// InitialiseImposter performs common initialisation tasks for all adapters:
// it opens the request journal, builds the expectation store and forwarder,
// and registers any expectations from the init file.
func InitialiseImposter(ctx context.Context, imposterConfig *config.ImposterConfig) (*handler.Handler, error) {
	logger.Infof("starting imposter-expect %s...", version.Version)

	provider, err := store.NewStoreProvider(ctx, imposterConfig.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise request journal: %w", err)
	}

	expectations := expectation.NewStore()
	requestLog := requestlog.New(provider, system.GenerateInstanceID())
	forwarder := forward.New(imposterConfig.ForwardTimeout, imposterConfig.ForwardTLSInsecure)
	dispatcher := dispatch.New(expectations, requestLog, forwarder)

	if imposterConfig.InitFile != "" {
		if err := registerInitialExpectations(imposterConfig.InitFile, expectations); err != nil {
			return nil, err
		}
	}

	return handler.NewHandler(expectations, requestLog, dispatcher, imposterConfig), nil
}

func registerInitialExpectations(path string, expectations *expectation.Store) error {
	initial, err := config.LoadInitFile(path)
	if err != nil {
		return fmt.Errorf("failed to load init file %s: %w", path, err)
	}
	for _, e := range initial {
		id, err := expectations.Register(e)
		if err != nil {
			return fmt.Errorf("invalid expectation in init file %s: %w", path, err)
		}
		logger.Debugf("registered expectation %s from init file", id)
	}
	logger.Infof("registered %d expectation(s) from init file", len(initial))
	return nil
}
