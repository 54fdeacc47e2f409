package app

import (
	"context"
	"sync"
	"time"

	"quiz-royale/internal/domain"
	"quiz-royale/internal/game"
)

const subscriberBuffer = 32

// Session is one player's game plus the subscribers watching it.
type Session struct {
	id        string
	createdAt time.Time
	game      *game.Game

	mu          sync.RWMutex
	subscribers map[chan domain.Event]struct{}
	cancelRun   context.CancelFunc
}

// NewSession builds a session whose game publishes to the session's subscribers.
func NewSession(id string, quiz domain.Quiz, opts game.Options) *Session {
	return newSessionWithClock(id, quiz, opts, time.Now)
}

func newSessionWithClock(id string, quiz domain.Quiz, opts game.Options, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		createdAt:   now(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
	s.game = game.New(id, quiz, s.publish, opts)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Game returns the session's state machine.
func (s *Session) Game() *game.Game {
	return s.game
}

func (s *Session) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) publish(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event so the game never blocks.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) run(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	s.cancelRun = cancel
	s.mu.Unlock()

	go s.game.Run(ctx, interval)
}

func (s *Session) close() {
	s.mu.Lock()
	cancel := s.cancelRun
	s.cancelRun = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.game.Abort()
}
