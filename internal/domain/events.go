package domain

// EventType names an outbound display event.
type EventType string

const (
	EventQuestionPresented EventType = "questionPresented"
	EventAnswerFeedback    EventType = "answerFeedback"
	EventTimerTick         EventType = "timerTick"
	EventQuizEnded         EventType = "quizEnded"
	EventRewardStatus      EventType = "rewardStatus"
	EventRewardInfo        EventType = "rewardInfo"
)

// Event is emitted by a game for the rendering layer.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// QuestionPresented carries the question now on screen.
type QuestionPresented struct {
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Prompt    string   `json:"prompt"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	Remaining int      `json:"remaining"`
}

// AnswerFeedback is the transient correctness signal after a submission.
type AnswerFeedback struct {
	Index        int  `json:"index"`
	Correct      bool `json:"correct"`
	BonusSeconds int  `json:"bonusSeconds"`
}

// TimerTick carries the seconds left on the countdown.
type TimerTick struct {
	Remaining int `json:"remaining"`
}

// QuizEnded carries the final score and message band.
type QuizEnded struct {
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
	TimeBonus  int    `json:"timeBonus"`
}
