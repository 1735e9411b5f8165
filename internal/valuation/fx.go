package valuation

import (
	"github.com/smallbiznis/docflow/internal/valuation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("valuation.service",
	fx.Provide(service.NewService),
)
