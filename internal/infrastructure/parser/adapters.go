package parser

import "KijiScanner/internal/scanner"

// RegisterDefaults adds every built-in adapter to reg.
func RegisterDefaults(reg *scanner.Registry) {
	reg.Register(NewNHKAdapter())
	reg.Register(NewAsahiAdapter())
}
