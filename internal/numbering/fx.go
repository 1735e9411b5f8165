package numbering

import (
	"github.com/smallbiznis/docflow/internal/numbering/repository"
	"github.com/smallbiznis/docflow/internal/numbering/service"
	"go.uber.org/fx"
)

var Module = fx.Module("numbering.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
