package sequence

import (
	"github.com/MahmoudHooda2019/alswaife/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.service",
	fx.Provide(service.NewService),
)
