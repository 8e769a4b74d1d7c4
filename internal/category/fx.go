package category

import (
	"github.com/civicworks/parkledger/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(service.NewService),
)
