package revenuesharingengine

import (
	"log/slog"

	httpadapter "tipstream/contexts/finance-core/revenue-sharing-engine/adapters/http"
	"tipstream/contexts/finance-core/revenue-sharing-engine/adapters/memory"
	"tipstream/contexts/finance-core/revenue-sharing-engine/application"
	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	"tipstream/contexts/finance-core/revenue-sharing-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Gateway *memory.Gateway
}

type Dependencies struct {
	Schemes                       ports.SchemeRepository
	Rooms                         ports.RoomRepository
	Ledger                        ports.LedgerRepository
	Treasury                      ports.TreasuryRepository
	Payments                      ports.PaymentGateway
	Clock                         ports.Clock
	Admin                         entities.Address
	BlockInactiveSchemeAssignment bool
	BlockTipsOnInactiveScheme     bool
	Logger                        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Schemes:                       deps.Schemes,
		Rooms:                         deps.Rooms,
		Ledger:                        deps.Ledger,
		Treasury:                      deps.Treasury,
		Payments:                      deps.Payments,
		Clock:                         deps.Clock,
		Admin:                         deps.Admin,
		BlockInactiveSchemeAssignment: deps.BlockInactiveSchemeAssignment,
		BlockTipsOnInactiveScheme:     deps.BlockTipsOnInactiveScheme,
		Logger:                        deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger, admin entities.Address) Module {
	store := memory.NewStore()
	gateway := memory.NewGateway()
	module := NewModule(Dependencies{
		Schemes:                       store,
		Rooms:                         store,
		Ledger:                        store,
		Treasury:                      store,
		Payments:                      gateway,
		Clock:                         store,
		Admin:                         admin,
		BlockInactiveSchemeAssignment: true,
		Logger:                        logger,
	})
	module.Store = store
	module.Gateway = gateway
	return module
}
