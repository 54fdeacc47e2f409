package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a play session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates quiz content that breaks the question bank shape.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidOption indicates a submitted option index is out of range.
	ErrInvalidOption = errors.New("option not found")
	// ErrGameRunning is returned when starting a game that is already running.
	ErrGameRunning = errors.New("quiz already running")

	// ErrInvalidAddress indicates a malformed wallet address.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrWrongNetwork indicates the client wallet is on another chain.
	ErrWrongNetwork = errors.New("wallet connected to the wrong network")
	// ErrGatewayUnavailable indicates the reward contract cannot be reached.
	ErrGatewayUnavailable = errors.New("reward gateway unavailable")
	// ErrAlreadyClaimed is returned when an address has already received the reward.
	ErrAlreadyClaimed = errors.New("already claimed")
	// ErrInsufficientFunds is returned when the reward pool cannot cover a payout.
	ErrInsufficientFunds = errors.New("insufficient contract balance")
	// ErrIncorrectAnswers is returned when the submitted answers do not match the key.
	ErrIncorrectAnswers = errors.New("incorrect answers")
	// ErrUserRejected is returned when the claim was cancelled before confirmation.
	ErrUserRejected = errors.New("transaction rejected by user")
	// ErrAnswerLogLength is returned when a claim carries fewer or more answers than questions.
	ErrAnswerLogLength = errors.New("answer log length mismatch")
)
