package catalog

import (
	"github.com/MahmoudHooda2019/alswaife/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(service.NewService),
)
