package bitfont

import "log"

// Diagnostics is the warning sink every decoder/encoder reports
// non-fatal anomalies through. Logging frameworks belong to the caller;
// the core only needs this interface. A nil Diagnostics is replaced by
// defaultDiag, which writes to the standard library's log package.
type Diagnostics interface {
	Warnf(format string, args ...any)
}

type stdlogDiag struct{}

func (stdlogDiag) Warnf(format string, args ...any) {
	log.Printf("warning: "+format, args...)
}

var defaultDiag Diagnostics = stdlogDiag{}

// diag returns d if non-nil, else the package default.
func diag(d Diagnostics) Diagnostics {
	if d == nil {
		return defaultDiag
	}
	return d
}

// DiscardDiagnostics is a Diagnostics that ignores every warning, useful
// in tests that want to assert on error returns without log noise.
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Warnf(format string, args ...any) {}
