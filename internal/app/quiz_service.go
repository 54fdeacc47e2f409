package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"quiz-royale/internal/domain"
	"quiz-royale/internal/game"
	"quiz-royale/internal/reward"
)

// SessionRepository abstracts how play sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AnswerKeyFrom reads the answer key of quizID through repo, so the reward
// check follows the same bank that new sessions play.
func AnswerKeyFrom(repo QuizRepository, quizID string) reward.AnswerKeySource {
	return func(ctx context.Context) ([]int, error) {
		quiz, err := repo.GetQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}
		return quiz.AnswerKey(), nil
	}
}

// Settings configures every game the service opens.
type Settings struct {
	QuizID  string
	Rules   game.Rules
	Tick    time.Duration
	ChainID string
	Reward  reward.SessionConfig
}

// RewardOverview is the public view of the reward pool.
type RewardOverview struct {
	AmountWei       string `json:"amountWei"`
	AmountEther     string `json:"amountEther"`
	SufficientFunds bool   `json:"sufficientFunds"`
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	gateway  reward.Gateway
	settings Settings
	log      logrus.FieldLogger
}

// NewQuizService wires the service. A nil gateway runs every game without reward capability.
func NewQuizService(store SessionRepository, quizzes QuizRepository, gateway reward.Gateway, settings Settings, log logrus.FieldLogger) *QuizService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if settings.QuizID == "" {
		settings.QuizID = domain.DefaultQuizID
	}
	if settings.Tick <= 0 {
		settings.Tick = time.Second
	}
	return &QuizService{
		sessions: store,
		quizzes:  quizzes,
		gateway:  gateway,
		settings: settings,
		log:      log,
	}
}

// Open creates an idle play session for a wallet address on chainID. An
// empty address plays without reward; a malformed one is rejected.
func (s *QuizService) Open(ctx context.Context, address, chainID string) (*Session, error) {
	var err error
	if address != "" {
		if address, err = reward.NormalizeAddress(address); err != nil {
			return nil, err
		}
	}

	quiz, err := s.quizzes.GetQuiz(ctx, s.settings.QuizID)
	if err != nil {
		return nil, err
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"session_id": id, "address": address})
	opts := game.Options{Rules: s.settings.Rules, Logger: log}
	switch {
	case s.gateway == nil:
		opts.UnavailableReason = "Reward contract not configured"
	case address == "":
		opts.UnavailableReason = "Connect a wallet to earn the reward"
	default:
		if err := reward.CheckNetwork(chainID, s.settings.ChainID); err != nil {
			log.WithError(err).Warn("reward disabled for session")
			opts.UnavailableReason = "Switch your wallet to the reward network to earn the reward"
			break
		}
		cfg := s.settings.Reward
		cfg.ExpectedAnswers = len(quiz.Questions)
		opts.Rewarder = reward.NewSession(s.gateway, address, cfg, log)
	}

	session := NewSession(id, quiz, opts)
	s.sessions.Put(session)
	log.Info("session opened")
	return session, nil
}

// Start begins (or restarts) the session's game and its countdown.
func (s *QuizService) Start(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if err := session.game.Start(ctx); err != nil {
		return err
	}
	session.run(s.settings.Tick)
	return nil
}

// SubmitAnswer forwards a validated selection to the session's game. It
// reports whether the answer was accepted.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, sel domain.Selection) (bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	return session.game.SubmitAnswer(ctx, sel), nil
}

// Snapshot returns the session's current state.
func (s *QuizService) Snapshot(sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.game.Snapshot(), nil
}

// Subscribe returns a channel that receives the session's display events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Close stops the session's countdown, ends its game and forgets it.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(sessionID)
}

// RewardOverview reports the payout amount and whether the pool can cover it.
func (s *QuizService) RewardOverview(ctx context.Context) (RewardOverview, error) {
	if s.gateway == nil {
		return RewardOverview{}, domain.ErrGatewayUnavailable
	}
	amount, err := s.gateway.RewardAmount(ctx)
	if err != nil {
		return RewardOverview{}, err
	}
	funded, err := s.gateway.HasSufficientFunds(ctx)
	if err != nil {
		return RewardOverview{}, err
	}
	return RewardOverview{
		AmountWei:       amount.String(),
		AmountEther:     reward.FormatEther(amount),
		SufficientFunds: funded,
	}, nil
}

// HasClaimed reports whether address already received the reward.
func (s *QuizService) HasClaimed(ctx context.Context, address string) (string, bool, error) {
	if s.gateway == nil {
		return "", false, domain.ErrGatewayUnavailable
	}
	normalized, err := reward.NormalizeAddress(address)
	if err != nil {
		return "", false, err
	}
	claimed, err := s.gateway.HasClaimed(ctx, normalized)
	return normalized, claimed, err
}
