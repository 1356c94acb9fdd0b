package graph

import "math"

// Weather is one of the three driving regimes a query can select.
type Weather string

const (
	Normal Weather = "normal"
	Rain   Weather = "rain"
	Flood  Weather = "flood"
)

// classCoeff holds the two fixed per-class constants from the external
// interface contract: the highway-type base coefficient and the design
// speed used for duration estimates.
type classCoeff struct {
	CHighway float64
	SpeedKmh uint16
}

var coeffTable = [numRoadClasses]classCoeff{
	Motorway:      {0.70, 100},
	MotorwayLink:  {0.75, 60},
	Trunk:         {0.75, 80},
	TrunkLink:     {0.80, 50},
	Primary:       {0.80, 60},
	PrimaryLink:   {0.85, 40},
	Secondary:     {1.00, 50},
	SecondaryLink: {1.05, 35},
	Tertiary:      {1.10, 40},
	TertiaryLink:  {1.15, 30},
	Residential:   {1.20, 30},
	LivingStreet:  {1.30, 20},
	Unclassified:  {1.20, 30},
	Service:       {1.50, 20},
}

// CHighway returns the static base coefficient for a road class.
func CHighway(c RoadClass) float64 { return coeffTable[c].CHighway }

// SpeedKmh returns the design speed in km/h for a road class.
func SpeedKmh(c RoadClass) uint16 { return coeffTable[c].SpeedKmh }

// contextRange holds the per-weather multiplier at the two ends of the
// class ordering (motorway..service); CContext linearly interpolates
// across it by class rank. Both ranges increase together so that
// CContext(c, Flood) >= CContext(c, Rain) >= CContext(c, Normal) holds for
// every class.
var contextRange = map[Weather][2]float64{
	Normal: {1.0, 1.0},
	Rain:   {1.05, 2.5},
	Flood:  {1.1, 5.0},
}

// CContext returns the weather multiplier for a road class.
func CContext(c RoadClass, w Weather) float64 {
	r, ok := contextRange[w]
	if !ok {
		r = contextRange[Normal]
	}
	t := float64(c) / float64(numRoadClasses-1)
	return r[0] + t*(r[1]-r[0])
}

// Weight returns weight(e, w) = length(e) * c_highway(class) * c_context(class, w).
func (g *Graph) Weight(e uint32, w Weather) float64 {
	lengthM := float64(g.LengthMM[e]) / 1000.0
	class := g.Class[e]
	return lengthM * CHighway(class) * CContext(class, w)
}

// TravelTimeSeconds estimates wall-clock traversal time from length and
// the class's design speed, ignoring weather (duration is a planning
// estimate, not a weighted-cost input).
func (g *Graph) TravelTimeSeconds(e uint32) float64 {
	lengthM := float64(g.LengthMM[e]) / 1000.0
	speedKmh := float64(SpeedKmh(g.Class[e]))
	if speedKmh <= 0 {
		return 0
	}
	return lengthM / (speedKmh * 1000.0 / 3600.0)
}

// tunedHeuristicFactor is the tuned A* heuristic constant. Admissible only
// while it stays at or below the minimum possible c_highway*c_context
// product across every class and weather regime.
const tunedHeuristicFactor = 0.7

// MinCoefficientProduct scans the fixed tables for the smallest possible
// c_highway(class) * c_context(class, weather) product across every class
// and every weather regime.
func MinCoefficientProduct() float64 {
	min := math.Inf(1)
	for c := RoadClass(0); c < numRoadClasses; c++ {
		for _, w := range []Weather{Normal, Rain, Flood} {
			p := CHighway(c) * CContext(c, w)
			if p < min {
				min = p
			}
		}
	}
	return min
}

// HeuristicFactor returns the constant k such that h(v) = haversine(v,
// target) * k is an admissible A* heuristic. It is tunedHeuristicFactor
// unless the fixed coefficient tables would make that constant
// inadmissible, in which case a safe value is derived from the computed
// minimum instead: any table change lowering the minimum product must
// lower this constant in lock-step.
func HeuristicFactor() float64 {
	min := MinCoefficientProduct()
	if min < tunedHeuristicFactor {
		return min * 0.95
	}
	return tunedHeuristicFactor
}
