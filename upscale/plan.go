package upscale

import "fmt"

// DefaultScales sind die waehlbaren Zielskalierungen
var DefaultScales = []int{1, 2, 3, 4, 16}

// Plan beschreibt wie eine Zielskalierung mit einem Modell der nativen
// Skalierung S erreicht wird.
type Plan struct {
	// Passes ist die Anzahl vollstaendiger Tile-Durchlaeufe (1 oder 2)
	Passes int
	// Resample: nach dem Durchlauf auf Zielgroesse herunterskalieren
	Resample bool
}

// PlanFor waehlt den Plan: T == S ein Durchlauf, T < S ein Durchlauf plus
// Herunterskalieren, T == S*S zwei Durchlaeufe. Alles andere ist nicht
// erreichbar.
func PlanFor(native, target int) (Plan, error) {
	switch {
	case native < 1 || target < 1:
		return Plan{}, fmt.Errorf("%w: %dx with native %dx", ErrUnsupportedScale, target, native)
	case target == native:
		return Plan{Passes: 1}, nil
	case target < native:
		return Plan{Passes: 1, Resample: true}, nil
	case target == native*native:
		return Plan{Passes: 2}, nil
	default:
		return Plan{}, fmt.Errorf("%w: %dx with native %dx", ErrUnsupportedScale, target, native)
	}
}
