package shared

import (
	"fmt"
	"math"
)

// maxPesos is the largest major-unit amount that still fits in int64 centavos.
const maxPesos = float64(math.MaxInt64) / 100

// AmountRangeError indicates an amount that cannot be represented as int64
// centavos, or an intermediate computation that would overflow it.
type AmountRangeError struct {
	Detail string
}

func (e AmountRangeError) Error() string {
	return "amount out of representable range: " + e.Detail
}

// Is implements the errors.Is interface for AmountRangeError
func (e AmountRangeError) Is(target error) bool {
	_, ok := target.(AmountRangeError)
	return ok
}

// ToCentavos converts a major-unit (peso) amount to integer centavos.
// This is the single conversion point at the system boundary; everything
// below the handlers works in int64 minor units.
func ToCentavos(pesos float64) (int64, error) {
	if math.IsNaN(pesos) || math.IsInf(pesos, 0) {
		return 0, AmountRangeError{Detail: fmt.Sprintf("%v is not a finite amount", pesos)}
	}
	if pesos > maxPesos || pesos < -maxPesos {
		return 0, AmountRangeError{Detail: fmt.Sprintf("%v exceeds the minor-unit range", pesos)}
	}
	return int64(math.Round(pesos * 100)), nil
}

// ToPesos converts integer centavos back to major units for API responses.
func ToPesos(centavos int64) float64 {
	return float64(centavos) / 100
}
