package alert

// Decision is the outcome of evaluating one reading against the threshold.
type Decision string

const (
	DecisionNone     Decision = "none"
	DecisionLowLevel Decision = "low_level"
)

// Evaluate applies the alert rule: low_level only when a usable percentage
// sits strictly below the threshold. An unknown level never alerts; a false
// alarm on an unreadable gauge is worse than a missed check.
func Evaluate(percentage *int, threshold int) Decision {
	if percentage == nil {
		return DecisionNone
	}
	if *percentage < threshold {
		return DecisionLowLevel
	}
	return DecisionNone
}
