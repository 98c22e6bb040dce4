package report

import (
	"fmt"
	"time"
)

// DefaultWarnThreshold is the total above which a report is flagged.
const DefaultWarnThreshold = 32 * time.Hour

// Tier classifies a report total for display.
type Tier int

const (
	TierNominal Tier = iota
	TierWarning
)

func (t Tier) String() string {
	if t == TierWarning {
		return "warning"
	}
	return "nominal"
}

// TierFor returns TierWarning once totalSeconds exceeds threshold.
func TierFor(totalSeconds int64, threshold time.Duration) Tier {
	if threshold <= 0 {
		threshold = DefaultWarnThreshold
	}
	if time.Duration(totalSeconds)*time.Second > threshold {
		return TierWarning
	}
	return TierNominal
}

// FormatHMS renders seconds as zero-padded HH:MM:SS. Hours are not wrapped
// at 24.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
