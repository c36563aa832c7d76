package supply

import "go.uber.org/fx"

// Module provides the supply lookup repository to Fx.
var Module = fx.Provide(NewRepository)
