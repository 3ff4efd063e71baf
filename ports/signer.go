package ports

import (
	"context"

	"github.com/yukti-app/walletd/core"
)

// AuthorizedAccount is one account returned by the signer host. Address is
// the base64 encoding of the raw 32-byte public key, as the wallet-adapter
// protocol transmits it.
type AuthorizedAccount struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
}

// AuthorizeResult is the outcome of a successful authorize or reauthorize.
type AuthorizeResult struct {
	Accounts  []AuthorizedAccount `json:"accounts"`
	AuthToken string              `json:"auth_token"`
}

// SignerBridge is the request/response bridge to the external wallet-signing
// host. The host owns all private keys; this process never sees them.
//
// Account selection policy: the session manager always uses Accounts[0].
type SignerBridge interface {
	// Authorize opens a new signing relationship scoped to a network cluster
	// and app identity.
	Authorize(ctx context.Context, cluster string, identity core.AppIdentity) (*AuthorizeResult, error)

	// Reauthorize renews an existing relationship using a previously issued
	// token. The returned token replaces the one passed in.
	Reauthorize(ctx context.Context, authToken string, identity core.AppIdentity) (*AuthorizeResult, error)

	// Deauthorize revokes a token. Advisory: callers must forget local state
	// even when this fails.
	Deauthorize(ctx context.Context, authToken string) error

	// SignTransactions signs the serialized transactions and returns them in
	// the same order. Payloads are wire-format transaction bytes.
	SignTransactions(ctx context.Context, txs [][]byte) ([][]byte, error)
}
