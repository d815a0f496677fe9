package main

import "math"

// Pure arithmetic for navigation and the fuel economy. Plutonium doubles as
// fuel; every deduction clamps at zero, which is what forces solar sailing
// instead of stranding a probe.

func distanceBetween(ax, ay, bx, by float64) float64 {
	return math.Hypot(bx-ax, by-ay)
}

// headingToward returns the heading in degrees from one point to another,
// normalized to [0, 360).
func headingToward(ax, ay, bx, by float64) float64 {
	return normalizeHeading(math.Atan2(by-ay, bx-ax) * degreesHalfTurn / math.Pi)
}

// normalizeHeading wraps a heading in degrees into [0, 360).
func normalizeHeading(deg float64) float64 {
	wrapped := math.Mod(deg, degreesFullTurn)
	if wrapped < 0 {
		wrapped += degreesFullTurn
	}
	return wrapped
}

// minimalAngularDifference returns the smallest separation between two
// headings, in [0, 180].
func minimalAngularDifference(a, b float64) float64 {
	diff := math.Abs(normalizeHeading(a) - normalizeHeading(b))
	if diff > degreesHalfTurn {
		diff = degreesFullTurn - diff
	}
	return diff
}

// travelFuelCost prices a directed trip of the given length.
func travelFuelCost(distance, fuelRatePerUnit float64) float64 {
	if distance <= 0 {
		return 0
	}
	return distance * fuelRatePerUnit
}

// turnFuelCost prices a heading change by its minimal angular difference.
func turnFuelCost(from, to, turnFuelRate float64) float64 {
	return minimalAngularDifference(from, to) * turnFuelRate
}

// spendFuel deducts a fuel cost from the available plutonium, clamping at
// zero. It returns the remaining fuel and whether the cost was fully covered.
func spendFuel(available, cost float64) (remaining float64, covered bool) {
	if cost <= 0 {
		return available, true
	}
	if cost >= available {
		return 0, false
	}
	return available - cost, true
}

// flightSpeed returns units per second for the probe's locomotion. When fuel
// is exhausted the probe keeps moving at the solar-sail fraction.
func flightSpeed(baseSpeed, statFlightSpeed, fuel, solarSailMultiplier float64) float64 {
	speed := baseSpeed * statFlightSpeed
	if fuel <= 0 {
		speed *= solarSailMultiplier
	}
	return speed
}

// miningRate returns whole-tick extraction speed in units per second.
func miningRate(baseRate, abundance, miningSpeed float64) float64 {
	if abundance <= 0 || miningSpeed <= 0 {
		return 0
	}
	return baseRate * (abundance / 100.0) * miningSpeed
}
