package reward

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"quiz-royale/internal/domain"
)

// DefaultClaimTimeout applies when SessionConfig.ClaimTimeout is not positive.
const DefaultClaimTimeout = 30 * time.Second

// SessionConfig tunes a player's reward session.
type SessionConfig struct {
	ExpectedAnswers int           // fixed question count; claims with another length are refused
	ClaimTimeout    time.Duration // upper bound on one submission; <= 0 means DefaultClaimTimeout
	ExplorerURL     string        // e.g. https://sepolia.etherscan.io
}

// Session binds a Gateway to one player address and turns claim results
// into display statuses.
type Session struct {
	gateway Gateway
	address string
	cfg     SessionConfig
	log     logrus.FieldLogger
}

func NewSession(gateway Gateway, address string, cfg SessionConfig, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		gateway: gateway,
		address: address,
		cfg:     cfg,
		log:     log.WithField("address", address),
	}
}

// Address returns the normalized player address.
func (s *Session) Address() string {
	return s.address
}

func (s *Session) AlreadyClaimed(ctx context.Context) (bool, error) {
	return s.gateway.HasClaimed(ctx, s.address)
}

func (s *Session) Info(ctx context.Context) (domain.RewardInfo, error) {
	amount, err := s.gateway.RewardAmount(ctx)
	if err != nil {
		return domain.RewardInfo{}, err
	}
	return domain.RewardInfo{AmountWei: amount.String(), AmountEther: FormatEther(amount)}, nil
}

// Claim submits a perfect answer log. A log whose length differs from the
// question count is refused before reaching the gateway; it is never padded.
func (s *Session) Claim(ctx context.Context, answers []int) domain.RewardStatus {
	if len(answers) != s.cfg.ExpectedAnswers {
		err := fmt.Errorf("%w: got %d answers, want %d", domain.ErrAnswerLogLength, len(answers), s.cfg.ExpectedAnswers)
		s.log.WithError(err).Error("refusing claim")
		return errorStatus("Transaction failed: " + err.Error())
	}

	funded, err := s.gateway.HasSufficientFunds(ctx)
	if err != nil {
		s.log.WithError(err).Warn("funds check failed")
		return errorStatus("Transaction failed: " + err.Error())
	}
	if !funded {
		return errorStatus(Classify(domain.ErrInsufficientFunds).Reason)
	}

	timeout := s.cfg.ClaimTimeout
	if timeout <= 0 {
		timeout = DefaultClaimTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := s.gateway.Submit(ctx, s.address, EncodeAnswers(answers))
	switch result.Kind {
	case domain.ClaimConfirmed:
		return domain.RewardStatus{
			State:   domain.RewardClaimed,
			TxRef:   result.TxRef,
			Link:    s.txLink(result.TxRef),
			Message: s.paidMessage(ctx),
		}
	default:
		s.log.WithField("kind", result.Kind).Info(result.Reason)
		return errorStatus(result.Reason)
	}
}

func (s *Session) paidMessage(ctx context.Context) string {
	amount, err := s.gateway.RewardAmount(ctx)
	if err != nil {
		return "Reward sent to your wallet"
	}
	return FormatEther(amount) + " ETH sent to your wallet"
}

func (s *Session) txLink(txRef string) string {
	if s.cfg.ExplorerURL == "" || txRef == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.ExplorerURL, "/") + "/tx/" + txRef
}

func errorStatus(message string) domain.RewardStatus {
	return domain.RewardStatus{State: domain.RewardError, Message: message}
}
