package game

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"quiz-royale/internal/domain"
)

// Emitter receives display events. It is usually called with the game lock held and must not block.
type Emitter func(domain.Event)

// Rewarder is the per-player view of the reward gateway.
type Rewarder interface {
	AlreadyClaimed(ctx context.Context) (bool, error)
	Info(ctx context.Context) (domain.RewardInfo, error)
	Claim(ctx context.Context, answers []int) domain.RewardStatus
}

// Options configures a Game.
type Options struct {
	Rules    Rules
	Rewarder Rewarder // nil plays without reward capability
	// UnavailableReason is reported at start when Rewarder is nil.
	UnavailableReason string
	Logger            logrus.FieldLogger
}

// Game is the quiz state machine for one player. All transitions are
// serialized by mu; the reward claim runs outside the lock.
type Game struct {
	id       string
	quiz     domain.Quiz
	rules    Rules
	rewarder Rewarder
	reason   string
	emit     Emitter
	log      logrus.FieldLogger

	mu            sync.Mutex
	phase         domain.Phase
	index         int
	remaining     int
	correct       int
	answers       []int
	submitting    bool
	claiming      bool
	rewardEnabled bool
	pending       *time.Timer
	outcome       *domain.Outcome
	done          chan struct{}
}

// New builds an idle game over quiz.
func New(id string, quiz domain.Quiz, emit Emitter, opts Options) *Game {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if emit == nil {
		emit = func(domain.Event) {}
	}
	return &Game{
		id:       id,
		quiz:     quiz,
		rules:    opts.Rules,
		rewarder: opts.Rewarder,
		reason:   opts.UnavailableReason,
		emit:     emit,
		log:      log.WithField("session_id", id),
		phase:    domain.PhaseIdle,
	}
}

// ID returns the session id.
func (g *Game) ID() string {
	return g.id
}

// Start resets the session and enters Running. If the player already
// claimed the reward the game stays out of Running, emits AlreadyClaimed
// and returns domain.ErrAlreadyClaimed.
func (g *Game) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.phase == domain.PhaseRunning || g.claiming {
		g.mu.Unlock()
		return domain.ErrGameRunning
	}
	g.mu.Unlock()

	rewardEnabled := false
	var notes []domain.Event
	if g.rewarder != nil {
		claimed, err := g.rewarder.AlreadyClaimed(ctx)
		switch {
		case err != nil:
			g.log.WithError(err).Warn("reward pre-check failed, continuing without reward")
			notes = append(notes, rewardEvent(domain.RewardStatus{
				State:   domain.RewardUnavailable,
				Message: "Reward unavailable: " + err.Error(),
			}))
		case claimed:
			g.emit(rewardEvent(domain.RewardStatus{
				State:   domain.RewardAlreadyClaimed,
				Message: "You have already claimed your reward for this quiz! Each wallet address can only claim once.",
			}))
			return domain.ErrAlreadyClaimed
		default:
			rewardEnabled = true
			if info, err := g.rewarder.Info(ctx); err != nil {
				g.log.WithError(err).Debug("could not fetch reward amount")
			} else {
				notes = append(notes, domain.Event{Type: domain.EventRewardInfo, Payload: info})
			}
		}
	} else if g.reason != "" {
		notes = append(notes, rewardEvent(domain.RewardStatus{State: domain.RewardUnavailable, Message: g.reason}))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == domain.PhaseRunning || g.claiming {
		return domain.ErrGameRunning
	}
	g.phase = domain.PhaseRunning
	g.index = 0
	g.remaining = g.rules.BaseSeconds
	g.correct = 0
	g.answers = make([]int, 0, len(g.quiz.Questions))
	g.submitting = false
	g.rewardEnabled = rewardEnabled
	g.outcome = nil
	g.done = make(chan struct{})

	for _, note := range notes {
		g.emit(note)
	}
	g.log.WithField("questions", len(g.quiz.Questions)).Info("quiz started")
	g.presentLocked()
	return nil
}

// Tick consumes one time unit. It reports whether the game is still running.
func (g *Game) Tick(ctx context.Context) bool {
	g.mu.Lock()
	if g.phase != domain.PhaseRunning {
		g.mu.Unlock()
		return false
	}
	g.remaining--
	if g.remaining < 0 {
		g.remaining = 0
	}
	g.emit(domain.Event{Type: domain.EventTimerTick, Payload: domain.TimerTick{Remaining: g.remaining}})
	if g.remaining > 0 {
		g.mu.Unlock()
		return true
	}
	g.log.WithField("answered", len(g.answers)).Info("time is up")
	claim := g.endLocked(true)
	g.mu.Unlock()

	g.runClaim(ctx, claim)
	return false
}

// SubmitAnswer records sel for the current question and advances. It is a
// no-op returning false when the game is not running or a previous answer
// is still in flight.
func (g *Game) SubmitAnswer(ctx context.Context, sel domain.Selection) bool {
	g.mu.Lock()
	if g.phase != domain.PhaseRunning || g.submitting {
		g.mu.Unlock()
		return false
	}

	value := sel.Value()
	question := g.quiz.Questions[g.index]
	correct := question.IsCorrect(value)
	g.answers = append(g.answers, value)
	bonus := 0
	if correct {
		g.correct++
		g.remaining += g.rules.BonusSeconds
		bonus = g.rules.BonusSeconds
	}
	g.emit(domain.Event{Type: domain.EventAnswerFeedback, Payload: domain.AnswerFeedback{
		Index:        g.index,
		Correct:      correct,
		BonusSeconds: bonus,
	}})
	g.index++

	if g.index >= len(g.quiz.Questions) {
		claim := g.endLocked(true)
		g.mu.Unlock()
		g.runClaim(ctx, claim)
		return true
	}

	if g.rules.AdvanceDelay <= 0 {
		g.presentLocked()
	} else {
		g.submitting = true
		g.pending = time.AfterFunc(g.rules.AdvanceDelay, g.advance)
	}
	g.mu.Unlock()
	return true
}

// Abort forces the game to Ended without a reward claim.
func (g *Game) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseRunning {
		return
	}
	g.log.Info("quiz aborted")
	g.endLocked(false)
}

// Done is closed when the current run leaves Running. It is nil before the first Start.
func (g *Game) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Run drives Tick every interval until the game ends or ctx is cancelled.
func (g *Game) Run(ctx context.Context, interval time.Duration) {
	done := g.Done()
	if done == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if !g.Tick(ctx) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the session state.
func (g *Game) Snapshot() domain.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	answers := make([]int, len(g.answers))
	copy(answers, g.answers)
	var outcome *domain.Outcome
	if g.outcome != nil {
		o := *g.outcome
		if o.Reward != nil {
			r := *o.Reward
			o.Reward = &r
		}
		outcome = &o
	}
	return domain.Snapshot{
		SessionID:  g.id,
		Phase:      g.phase,
		Index:      g.index,
		Total:      len(g.quiz.Questions),
		Remaining:  g.remaining,
		Correct:    g.correct,
		Answers:    answers,
		Submitting: g.submitting,
		Claiming:   g.claiming,
		Outcome:    outcome,
	}
}

func (g *Game) advance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	if g.phase != domain.PhaseRunning {
		return
	}
	g.submitting = false
	g.presentLocked()
}

func (g *Game) presentLocked() {
	question := g.quiz.Questions[g.index]
	options := make([]string, len(question.Options))
	copy(options, question.Options)
	g.emit(domain.Event{Type: domain.EventQuestionPresented, Payload: domain.QuestionPresented{
		Index:     g.index,
		Total:     len(g.quiz.Questions),
		Prompt:    question.Prompt,
		Options:   options,
		Correct:   g.correct,
		Remaining: g.remaining,
	}})
}

// endLocked moves to Ended and returns the answer log to claim with, or nil.
func (g *Game) endLocked(allowClaim bool) []int {
	g.phase = domain.PhaseEnded
	g.submitting = false
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
	if g.done != nil {
		close(g.done)
	}

	total := len(g.quiz.Questions)
	perfect := total > 0 && g.correct == total
	g.outcome = &domain.Outcome{
		Correct:    g.correct,
		Total:      total,
		Answered:   len(g.answers),
		Percentage: Percentage(g.correct, total),
		Message:    Band(g.correct, total),
		Perfect:    perfect,
		TimeBonus:  g.correct * g.rules.BonusSeconds,
	}
	g.emit(domain.Event{Type: domain.EventQuizEnded, Payload: domain.QuizEnded{
		Correct:    g.outcome.Correct,
		Total:      g.outcome.Total,
		Percentage: g.outcome.Percentage,
		Message:    g.outcome.Message,
		TimeBonus:  g.outcome.TimeBonus,
	}})
	g.log.WithFields(logrus.Fields{
		"correct":    g.correct,
		"total":      total,
		"percentage": g.outcome.Percentage,
	}).Info("quiz ended")

	if !allowClaim || !perfect {
		return nil
	}
	if !g.rewardEnabled || g.rewarder == nil {
		g.log.Info("reward not configured, skipping submission")
		return nil
	}
	g.claiming = true
	status := domain.RewardStatus{State: domain.RewardSubmitting, Message: "Please confirm the transaction in your wallet"}
	g.outcome.Reward = &status
	g.emit(rewardEvent(status))
	answers := make([]int, len(g.answers))
	copy(answers, g.answers)
	return answers
}

func (g *Game) runClaim(ctx context.Context, answers []int) {
	if answers == nil {
		return
	}
	defer func() {
		g.mu.Lock()
		g.claiming = false
		g.mu.Unlock()
	}()

	status := g.rewarder.Claim(ctx, answers)

	g.mu.Lock()
	g.outcome.Reward = &status
	g.emit(rewardEvent(status))
	g.mu.Unlock()
}

func rewardEvent(status domain.RewardStatus) domain.Event {
	return domain.Event{Type: domain.EventRewardStatus, Payload: status}
}
