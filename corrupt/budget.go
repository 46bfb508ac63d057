package corrupt

import "math"

// Allocate berechnet das globale Korruptions-Budget und verteilt es
// proportional auf die Regionen. Der Rundungsrest landet komplett in der
// letzten Region, damit die Summe exakt dem Budget entspricht.
// Jede Zuteilung ist durch die Laenge ihrer Region begrenzt.
func Allocate(regions []Region, percent float64) (total int, perRegion []int) {
	if len(regions) == 0 {
		return 0, nil
	}

	total = max(1, int(math.Floor(float64(totalBytes(regions))*percent)))
	perRegion = make([]int, len(regions))

	allocated := 0
	last := len(regions) - 1
	for i, r := range regions {
		var k int
		if i == last {
			k = total - allocated
		} else {
			k = int(math.Floor(float64(r.Len()) * percent))
		}
		k = max(0, min(k, r.Len()))

		perRegion[i] = k
		allocated += k
	}

	return total, perRegion
}

// ClampPercent begrenzt den Anteil auf [lo, hi]
func ClampPercent(p, lo, hi float64) float64 {
	if math.IsNaN(p) {
		return lo
	}
	return math.Min(hi, math.Max(lo, p))
}
