package graph

import "testing"

func TestCContextMonotoneAcrossWeather(t *testing.T) {
	for c := RoadClass(0); c < numRoadClasses; c++ {
		n := CContext(c, Normal)
		r := CContext(c, Rain)
		f := CContext(c, Flood)
		if !(n <= r && r <= f) {
			t.Errorf("class %s: expected normal<=rain<=flood, got %v<=%v<=%v", c, n, r, f)
		}
	}
}

func TestCContextNormalIsOne(t *testing.T) {
	for c := RoadClass(0); c < numRoadClasses; c++ {
		if got := CContext(c, Normal); got != 1.0 {
			t.Errorf("class %s: normal multiplier = %v, want 1.0", c, got)
		}
	}
}

func TestHeuristicFactorAdmissible(t *testing.T) {
	min := MinCoefficientProduct()
	factor := HeuristicFactor()
	if factor > min {
		t.Fatalf("heuristic factor %v exceeds the minimum coefficient product %v", factor, min)
	}
}

func TestParseClassRoundTrip(t *testing.T) {
	for c := RoadClass(0); c < numRoadClasses; c++ {
		got, ok := ParseClass(c.String())
		if !ok || got != c {
			t.Errorf("ParseClass(%q) = %v, %v; want %v, true", c.String(), got, ok, c)
		}
	}
	if _, ok := ParseClass("footway"); ok {
		t.Error("footway should not parse as a drivable class")
	}
}
