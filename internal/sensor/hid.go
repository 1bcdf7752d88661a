package sensor

import "strings"

// cpuPrefixes mark the performance and efficiency cluster die sensors.
var cpuPrefixes = []string{"pACC", "eACC"}

// hwmonCPUChips are hwmon chip names that report processor temperatures.
var hwmonCPUChips = []string{"coretemp", "k10temp", "zenpower", "cpu_thermal", "soc_thermal"}

// IsCPUName reports whether a HID sensor name belongs to a CPU cluster.
func IsCPUName(name string) bool {
	for _, p := range cpuPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}

	lower := strings.ToLower(name)
	for _, chip := range hwmonCPUChips {
		if strings.HasPrefix(lower, chip) {
			return true
		}
	}

	return false
}

// dedupe keeps the first reading for each (kind, name) pair.
func dedupe(readings []Reading) []Reading {
	seen := make(map[Key]struct{}, len(readings))
	out := readings[:0]
	for _, r := range readings {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	return out
}
