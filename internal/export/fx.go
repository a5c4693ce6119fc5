package export

import (
	"github.com/MahmoudHooda2019/alswaife/internal/export/service"
	"go.uber.org/fx"
)

var Module = fx.Module("export.service",
	fx.Provide(service.NewService),
)
