package pricing

import (
	"github.com/MahmoudHooda2019/alswaife/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(service.NewService),
)
