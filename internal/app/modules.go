package app

import (
	"github.com/specialistvlad/flightderive/internal/catalog"
	"github.com/specialistvlad/flightderive/modules/core"
	"github.com/specialistvlad/flightderive/modules/landing"
)

// coreModules is the definitive list of all node modules that are compiled
// into the flightderive binary. The core module must come first.
var coreModules = []catalog.Module{
	core.Module{},
	landing.Module{},
}
