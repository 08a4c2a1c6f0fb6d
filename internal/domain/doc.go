// Package domain implements the policy impact estimation core: classification
// of particulate readings, intervention selection, and impact simulation.
// Every function here is pure; none performs I/O or reads the clock.
//
// # Inputs
//
// Readings come from the WAQI air-quality network and Open-Meteo for a fixed
// set of Delhi NCR sectors. Units:
//
//	pm25, pm10    µg/m³, trusted only in [0, 1000) and [0, 2000)
//	traffic index 0-1, from NO2/CO or a time-of-day estimate
//	wind speed    m/s
//
// The sector name doubles as its category: the keywords "Industrial",
// "Residential" and "Commercial" are matched as substrings.
//
// # PM10/PM2.5 Ratio
//
// The coarse-to-fine ratio r = pm10/pm25 drives both cause detection and the
// dust rules. High r (coarse particles) indicates road dust and construction;
// low r (fine particles) indicates combustion from vehicles and industry.
// When pm25 is zero r is defined as 1 so every path terminates.
//
// # Severity
//
// Tiers follow the upper pm2.5 bands of the US AQI breakpoints, exclusive
// lower bounds:
//
//	>250 hazardous | >200 very_unhealthy | >150 unhealthy |
//	>100 unhealthy_for_sensitive | else moderate
//
// # Intervention Selection
//
// [Recommend] walks an ordered rule list and returns the first match.
// Predicates overlap; evaluation order is the tie-break. The
// list is exposed through [RuleIDs] for tests.
//
// # Impact Simulation
//
// [Simulate] scales the literature effectiveness range of an intervention by
// two discounts:
//
//	met factor    wind bucket × day/night mixing, in [0.4, 1.1]
//	source match  how well the intervention targets the inferred source, 0-1
//
// Projections are computed from unrounded values; callers round at the
// output boundary.
package domain
