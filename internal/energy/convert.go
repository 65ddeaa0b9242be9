package energy

// DefaultCarbonIntensity is the global grid average in grams CO2e per kWh.
const DefaultCarbonIntensity = 436.0

const joulesPerKWh = 3_600_000.0

// JoulesToKWh converts joules to kilowatt-hours.
func JoulesToKWh(joules float64) float64 {
	return joules / joulesPerKWh
}

// KWhToJoules converts kilowatt-hours to joules.
func KWhToJoules(kwh float64) float64 {
	return kwh * joulesPerKWh
}

// KWhToCo2e converts an energy quantity to grams of CO2-equivalent emissions
// using the given carbon-intensity factor (grams CO2e per kWh).
func KWhToCo2e(kwh, gramsPerKWh float64) float64 {
	return kwh * gramsPerKWh
}

// TdpToJoules estimates energy from a thermal-design-power figure held for
// the given number of seconds.
func TdpToJoules(tdpWatts, seconds float64) float64 {
	return tdpWatts * seconds
}

// BenchmarksToKWh estimates energy in kWh from a runtime and an average
// power figure.
func BenchmarksToKWh(runtimeSeconds, averageWatts float64) float64 {
	return runtimeSeconds * averageWatts / joulesPerKWh
}

// GigabytesToKWh estimates the energy cost of transferring data, in kWh per
// gigabyte moved.
func GigabytesToKWh(gigabytes float64) float64 {
	return gigabytes * 0.0028125
}

// MegabytesToKWh estimates the energy cost of transferring data, in kWh per
// megabyte moved.
func MegabytesToKWh(megabytes float64) float64 {
	return megabytes * 0.0000028125
}
