// Command policyctl evaluates ad-hoc air-quality readings with the same
// classifier, selector and simulator the engine service uses.
//
// Usage:
//
//	policyctl classify --sector "Gurgaon Industrial Hub" --pm25 220 --pm10 310 --traffic 0.4
//	policyctl recommend --pm25 300 --pm10 200 --traffic 0.6 --wind 1.5
//	policyctl simulate --policy "Odd-Even Vehicle Scheme" --pm25 180 --pm10 240 --at 2026-01-15T08:00:00+05:30
//	policyctl interventions
package main

import (
	"os"
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
