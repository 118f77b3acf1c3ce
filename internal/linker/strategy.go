package linker

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Strategy selects how IBES tickers reach Compustat gvkeys.
type Strategy int

const (
	// Transitive joins IBES to CRSP on CUSIP and CRSP to Compustat through
	// the CCM link history.
	Transitive Strategy = iota
	// Direct joins IBES tickers to the Compustat security table's IBES
	// ticker field.
	Direct
)

// Method selectors accepted on the command line.
const (
	MethodCRSP = "crsp"
	MethodGSEC = "gsec"
)

// String returns the method selector for s.
func (s Strategy) String() string {
	switch s {
	case Transitive:
		return MethodCRSP
	case Direct:
		return MethodGSEC
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// UnknownMethodError reports a selector that names no strategy.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown method %q (want %q or %q)", e.Method, MethodCRSP, MethodGSEC)
}

// ParseMethod maps a case-insensitive selector onto a Strategy. An empty
// selector means Transitive.
func ParseMethod(method string) (Strategy, error) {
	switch cases.Fold().String(strings.TrimSpace(method)) {
	case "", MethodCRSP:
		return Transitive, nil
	case MethodGSEC:
		return Direct, nil
	default:
		return 0, &UnknownMethodError{Method: method}
	}
}
