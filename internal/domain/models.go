package domain

import "time"

// OptionCount is the fixed number of options every question carries.
const OptionCount = 4

// NoSelection is recorded in the answer log when no option was chosen.
const NoSelection = -1

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// IsCorrect reports whether the selected option index is the correct one.
func (q Question) IsCorrect(selected int) bool {
	return selected != NoSelection && selected == q.Answer
}

// Quiz is a fixed, ordered question bank.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// AnswerKey returns the correct option index of every question, in order.
func (q Quiz) AnswerKey() []int {
	key := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		key[i] = question.Answer
	}
	return key
}

// Phase is the lifecycle state of a game.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseEnded   Phase = "ended"
)

// Outcome is the terminal result of a game.
type Outcome struct {
	Correct    int           `json:"correct"`
	Total      int           `json:"total"`
	Answered   int           `json:"answered"`
	Percentage int           `json:"percentage"`
	Message    string        `json:"message"`
	Perfect    bool          `json:"perfect"`
	TimeBonus  int           `json:"timeBonus"`
	Reward     *RewardStatus `json:"reward,omitempty"`
}

// Snapshot is a read-only copy of a game's state.
type Snapshot struct {
	SessionID  string   `json:"sessionId"`
	Phase      Phase    `json:"phase"`
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	Remaining  int      `json:"remaining"`
	Correct    int      `json:"correct"`
	Answers    []int    `json:"answers"`
	Submitting bool     `json:"submitting"`
	Claiming   bool     `json:"claiming"`
	Outcome    *Outcome `json:"outcome,omitempty"`
}

// RewardState enumerates the reward display states.
type RewardState string

const (
	RewardSubmitting     RewardState = "submitting"
	RewardClaimed        RewardState = "claimed"
	RewardAlreadyClaimed RewardState = "alreadyClaimed"
	RewardError          RewardState = "error"
	// RewardUnavailable is a non-fatal note: the quiz runs without reward capability.
	RewardUnavailable RewardState = "unavailable"
)

// RewardStatus is the reward progress shown to the player.
type RewardStatus struct {
	State   RewardState `json:"state"`
	TxRef   string      `json:"txRef,omitempty"`
	Link    string      `json:"link,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RewardInfo describes the payout a perfect score earns.
type RewardInfo struct {
	AmountWei   string `json:"amountWei"`
	AmountEther string `json:"amountEther"`
}

// ClaimKind classifies the result of a reward submission.
type ClaimKind string

const (
	ClaimConfirmed ClaimKind = "confirmed"
	ClaimRejected  ClaimKind = "rejected"
	ClaimFailed    ClaimKind = "failed"
)

// ClaimResult is the outcome of a reward submission.
type ClaimResult struct {
	Kind   ClaimKind `json:"kind"`
	TxRef  string    `json:"txRef,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Claim is a recorded payout.
type Claim struct {
	Address   string    `json:"address"`
	TxRef     string    `json:"txRef"`
	AmountWei string    `json:"amountWei"`
	ClaimedAt time.Time `json:"claimedAt"`
}
