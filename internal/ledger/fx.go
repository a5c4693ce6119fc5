package ledger

import (
	"github.com/MahmoudHooda2019/alswaife/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
