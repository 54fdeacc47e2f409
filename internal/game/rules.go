package game

import (
	"fmt"
	"math"
	"time"
)

// Rules holds the timing constants of a game.
type Rules struct {
	BaseSeconds  int           // countdown at start
	BonusSeconds int           // added per correct answer
	AdvanceDelay time.Duration // pause between feedback and the next question; zero advances at once
}

// DefaultRules returns the production timing.
func DefaultRules() Rules {
	return Rules{
		BaseSeconds:  60,
		BonusSeconds: 5,
		AdvanceDelay: time.Second,
	}
}

// Percentage returns round(100 * correct / total).
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Band picks the result message for a final score.
func Band(correct, total int) string {
	pct := Percentage(correct, total)
	switch {
	case total > 0 && correct == total:
		return "Perfect Score! You answered all questions correctly!"
	case pct >= 80:
		return fmt.Sprintf("Excellent! You scored %d/%d (%d%%) - Great job!", correct, total, pct)
	case pct >= 60:
		return fmt.Sprintf("Good work! You scored %d/%d (%d%%)", correct, total, pct)
	default:
		return fmt.Sprintf("Keep studying! You scored %d/%d (%d%%). Better luck next time!", correct, total, pct)
	}
}
