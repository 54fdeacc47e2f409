package reward

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"quiz-royale/internal/domain"
)

// AnswerKeySource returns the answer key of the bank currently being played.
type AnswerKeySource func(ctx context.Context) ([]int, error)

// StaticAnswerKey serves a fixed key.
func StaticAnswerKey(key []int) AnswerKeySource {
	fixed := append([]int(nil), key...)
	return func(context.Context) ([]int, error) {
		return fixed, nil
	}
}

// LedgerGateway emulates the reward contract on top of a Ledger: it checks
// the submitted answers against the key, refuses second claims and pays a
// fixed amount out of the pool. The key is read on every submission so a
// reseeded bank takes effect without a restart.
type LedgerGateway struct {
	ledger   Ledger
	keys     AnswerKeySource
	amount   *big.Int
	log      logrus.FieldLogger
	newTxRef func() (string, error)
}

func NewLedgerGateway(ledger Ledger, keys AnswerKeySource, amount *big.Int, log logrus.FieldLogger) *LedgerGateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LedgerGateway{
		ledger:   ledger,
		keys:     keys,
		amount:   new(big.Int).Set(amount),
		log:      log,
		newTxRef: randomTxRef,
	}
}

func (g *LedgerGateway) HasClaimed(ctx context.Context, address string) (bool, error) {
	claimed, err := g.ledger.HasClaimed(ctx, address)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return claimed, nil
}

func (g *LedgerGateway) RewardAmount(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(g.amount), nil
}

func (g *LedgerGateway) HasSufficientFunds(ctx context.Context) (bool, error) {
	balance, err := g.ledger.Balance(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return balance.Cmp(g.amount) >= 0, nil
}

func (g *LedgerGateway) Submit(ctx context.Context, address string, answers []uint8) domain.ClaimResult {
	rawKey, err := g.keys(ctx)
	if err != nil {
		g.log.WithError(err).Warn("answer key unavailable")
		return Classify(fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err))
	}
	answerKey := EncodeAnswers(rawKey)
	if len(answers) != len(answerKey) {
		return Classify(fmt.Errorf("%w: got %d answers, want %d", domain.ErrAnswerLogLength, len(answers), len(answerKey)))
	}
	for i := range answers {
		if answers[i] != answerKey[i] {
			return Classify(domain.ErrIncorrectAnswers)
		}
	}

	txRef, err := g.newTxRef()
	if err != nil {
		return Classify(err)
	}
	if err := ctx.Err(); err != nil {
		return Classify(err)
	}
	if err := g.ledger.Claim(ctx, address, g.amount, txRef); err != nil {
		g.log.WithError(err).WithField("address", address).Warn("claim refused")
		return Classify(err)
	}
	g.log.WithFields(logrus.Fields{"address": address, "tx": txRef}).Info("reward paid")
	return domain.ClaimResult{Kind: domain.ClaimConfirmed, TxRef: txRef}
}

// Classify maps a submission error to a claim result with a display reason.
func Classify(err error) domain.ClaimResult {
	switch {
	case err == nil:
		return domain.ClaimResult{Kind: domain.ClaimConfirmed}
	case errors.Is(err, domain.ErrUserRejected), errors.Is(err, context.Canceled):
		return domain.ClaimResult{Kind: domain.ClaimRejected, Reason: "Transaction rejected by user"}
	case errors.Is(err, domain.ErrIncorrectAnswers):
		return domain.ClaimResult{Kind: domain.ClaimFailed, Reason: "Incorrect answers - no reward claimed"}
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return domain.ClaimResult{Kind: domain.ClaimFailed, Reason: "Reward already claimed by this address"}
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.ClaimResult{Kind: domain.ClaimFailed, Reason: "Contract has insufficient funds"}
	default:
		return domain.ClaimResult{Kind: domain.ClaimFailed, Reason: "Transaction failed: " + err.Error()}
	}
}

// randomTxRef returns a 32-byte hex reference built from two random UUIDs.
func randomTxRef() (string, error) {
	hi, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	lo, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(hi[:]) + hex.EncodeToString(lo[:]), nil
}
