package cli

import (
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"quiz-royale/internal/config"
	"quiz-royale/internal/reward"
)

// NewFundCmd credits the reward pool of a persistent ledger.
func NewFundCmd(configPath *string) *cobra.Command {
	var inWei bool
	cmd := &cobra.Command{
		Use:   "fund <amount>",
		Short: "Credit the reward pool (amount in ether, or wei with --wei)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg.Log.Level, cfg.Log.Format)

			var amount *big.Int
			if inWei {
				amount, err = reward.ParseWei(args[0])
			} else {
				amount, err = reward.ParseEther(args[0])
			}
			if err != nil {
				return err
			}

			ledger, closeLedger, err := ledgerForAdmin(cfg)
			if err != nil {
				return err
			}
			defer closeLedger()

			balance, err := ledger.Fund(cmd.Context(), amount)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"credited": reward.FormatEther(amount),
				"balance":  reward.FormatEther(balance),
			}).Info("reward pool funded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&inWei, "wei", false, "treat amount as wei")
	return cmd
}

// NewClaimsCmd prints the recorded payouts.
func NewClaimsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "List reward payouts recorded in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ledger, closeLedger, err := ledgerForAdmin(cfg)
			if err != nil {
				return err
			}
			defer closeLedger()

			claims, err := ledger.Claims(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range claims {
				amount, _ := reward.ParseWei(c.AmountWei)
				fmt.Fprintf(out, "%s\t%s\t%s ETH\t%s\n", c.ClaimedAt.Format("2006-01-02 15:04:05"), c.Address, reward.FormatEther(amount), c.TxRef)
			}
			fmt.Fprintf(out, "%d claim(s)\n", len(claims))
			return nil
		},
	}
}

// ledgerForAdmin opens a persistent ledger; the in-process ones would be
// discarded as soon as the command exits.
func ledgerForAdmin(cfg config.Config) (reward.Ledger, func(), error) {
	switch cfg.Reward.Ledger {
	case config.LedgerNone, config.LedgerMemory:
		return nil, nil, fmt.Errorf("reward ledger %q is not persistent", cfg.Reward.Ledger)
	}
	return openLedger(cfg, newRedisClient(cfg))
}
