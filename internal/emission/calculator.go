// Package emission converts logged activities into kg CO2e using a fixed
// factor table.
package emission

import (
	"math"
	"sort"
)

// Factor is the emission factor for one activity type.
type Factor struct {
	ActivityType string  `json:"activity_type"`
	KgPerUnit    float64 `json:"kg_per_unit"`
	Unit         string  `json:"unit"`
}

// factors maps activity type to kg CO2e per unit of quantity.
var factors = map[string]Factor{
	"car":         {ActivityType: "car", KgPerUnit: 0.21, Unit: "km"},
	"bus":         {ActivityType: "bus", KgPerUnit: 0.10, Unit: "km"},
	"train":       {ActivityType: "train", KgPerUnit: 0.05, Unit: "km"},
	"electricity": {ActivityType: "electricity", KgPerUnit: 0.50, Unit: "kWh"},
	"meat":        {ActivityType: "meat", KgPerUnit: 2.50, Unit: "meal"},
	"vegetarian":  {ActivityType: "vegetarian", KgPerUnit: 1.00, Unit: "meal"},
}

// Result is the outcome of a calculation. Recognized is false when the
// activity type is not in the factor table; Value is then 0.
type Result struct {
	Value      float64 `json:"value"`
	Factor     float64 `json:"factor"`
	Recognized bool    `json:"recognized"`
}

// Calculate returns round(quantity * factor, 2). Unknown activity types map
// to a factor of 0 rather than an error.
func Calculate(activityType string, quantity float64) Result {
	f, ok := Lookup(activityType)
	if !ok {
		return Result{}
	}
	return Result{
		Value:      Round2(quantity * f.KgPerUnit),
		Factor:     f.KgPerUnit,
		Recognized: true,
	}
}

// Lookup finds the factor for an activity type. Matching is exact, so
// "Car" and " car" are unknown types.
func Lookup(activityType string) (Factor, bool) {
	f, ok := factors[activityType]
	return f, ok
}

// Factors returns the factor table sorted by activity type.
func Factors() []Factor {
	out := make([]Factor, 0, len(factors))
	for _, f := range factors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivityType < out[j].ActivityType })
	return out
}

// Round2 rounds v*100 to the nearest integer, halves away from zero, and
// scales back. It works on the float64 product, not on a decimal string, so
// train x 2.5 (0.125) becomes 0.13 rather than the half-even 0.12.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		// avoid -0 in JSON output
		return 0
	}
	return r
}
