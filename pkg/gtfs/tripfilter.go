package gtfs

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TripFilter is a compiled boolean expression over a Trip's fields, for example
// `DirectionID == 0 && Headsign startsWith "Downtown"`. A nil filter keeps every trip.
type TripFilter struct {
	source  string
	program *vm.Program
}

func CompileTripFilter(source string) (*TripFilter, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(Trip{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("trip filter %q: %w", source, err)
	}

	return &TripFilter{source: source, program: program}, nil
}

func (f *TripFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

func (f *TripFilter) Match(trip Trip) (bool, error) {
	if f == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, trip)
	if err != nil {
		return false, fmt.Errorf("trip filter on trip %s: %w", trip.ID, err)
	}

	return output.(bool), nil
}
