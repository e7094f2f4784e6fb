// Package hazard classifies raw readings into ordered severity levels and
// reconciles overlapping precipitation samples.
package hazard

// Level is an ordered hazard severity.
type Level int

// Severity levels, least to most severe.
const (
	Safe Level = iota
	Waspada
	Warning
	Danger
)

var levelNames = map[Level]string{
	Safe:    "SAFE",
	Waspada: "WASPADA",
	Warning: "WARNING",
	Danger:  "DANGER",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "SAFE"
}

// ParseLevel maps a stored level name back to a Level. Unknown names are SAFE.
func ParseLevel(name string) Level {
	for level, n := range levelNames {
		if n == name {
			return level
		}
	}
	return Safe
}
