package domain

// MonthStatus is the outcome of fetching one month.
type MonthStatus int

const (
	MonthOK MonthStatus = iota
	MonthEmpty
	MonthFailed
)

func (s MonthStatus) String() string {
	switch s {
	case MonthOK:
		return "ok"
	case MonthEmpty:
		return "empty"
	case MonthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MonthResult is a best-effort fetch outcome. Err is set only for MonthFailed
// and is kept for logging; the caller moves on to the next month.
type MonthResult struct {
	Month        YearMonth
	Status       MonthStatus
	Observations []Observation
	Err          error
}
