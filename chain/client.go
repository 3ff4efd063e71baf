// Package chain is the network boundary to the Solana ledger.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/yukti-app/walletd/core"
)

const (
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = 2 * time.Second
)

var lamportsPerSol = decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))

// Client wraps a Solana JSON-RPC node.
type Client struct {
	rpc            *rpc.Client
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

type Option func(*Client)

// WithConfirmTimeout bounds how long SubmitAndConfirm waits for confirmation.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = d }
}

// WithPollInterval sets how often SubmitAndConfirm polls signature statuses.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		rpc:            rpc.New(endpoint),
		confirmTimeout: defaultConfirmTimeout,
		pollInterval:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestBlockhash fetches the most recent finalized block reference. Callers
// must re-fetch for every new transaction: block references expire.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// Balance returns the address balance in SOL. A zero balance is a valid
// result, not an error.
func (c *Client) Balance(ctx context.Context, address solana.PublicKey) (float64, error) {
	out, err := c.rpc.GetBalance(ctx, address, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance for %s: %w", address, err)
	}
	sol, _ := decimal.NewFromInt(int64(out.Value)).Div(lamportsPerSol).Float64()
	return sol, nil
}

// SubmitAndConfirm submits a signed transaction and polls until it reaches at
// least confirmed commitment or the bound elapses. Submission is an
// irreversible on-chain side effect: never retried here, and a timeout means
// the outcome is unknown, not that nothing happened.
func (c *Client) SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, core.NewError(core.KindSubmissionFailed, "node rejected the transaction", err)
	}

	log.WithField("signature", sig.String()).Debug("transaction submitted, awaiting confirmation")

	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return sig, core.NewError(core.KindConfirmationTimeout,
				fmt.Sprintf("transaction %s not confirmed within %s", sig, c.confirmTimeout), ctx.Err())
		case <-ticker.C:
			confirmed, err := c.checkConfirmed(ctx, sig)
			if err != nil {
				return sig, err
			}
			if confirmed {
				return sig, nil
			}
		}
	}
}

func (c *Client) checkConfirmed(ctx context.Context, sig solana.Signature) (bool, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		// Transient lookup failures are not a verdict; keep polling.
		log.WithError(err).Debug("signature status lookup failed")
		return false, nil
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return false, core.Errorf(core.KindSubmissionFailed, "transaction %s failed on chain: %v", sig, status.Err)
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}
