// Package signer implements the SignerBridge port against an external
// mobile-wallet-adapter style host reachable over a websocket JSON-RPC
// channel. The host holds the private keys and performs every authorization
// and signature on the user's behalf.
package signer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yukti-app/walletd/core"
	"github.com/yukti-app/walletd/ports"
)

const (
	methodAuthorize        = "authorize"
	methodReauthorize      = "reauthorize"
	methodDeauthorize      = "deauthorize"
	methodSignTransactions = "sign_transactions"

	handshakeTimeout   = 10 * time.Second
	defaultCallTimeout = 90 * time.Second // authorization waits on a human
)

// Bridge is a websocket JSON-RPC client for the wallet host.
type Bridge struct {
	mu   sync.Mutex // serializes request/response pairs on the single conn
	conn *websocket.Conn

	callTimeout time.Duration
}

var _ ports.SignerBridge = (*Bridge)(nil)

// Dial connects to the wallet host endpoint (e.g. ws://127.0.0.1:8188/mwa).
func Dial(ctx context.Context, endpoint string) (*Bridge, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet host at %s: %w", endpoint, err)
	}
	return &Bridge{conn: conn, callTimeout: defaultCallTimeout}, nil
}

// Close tears down the websocket channel.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.Close()
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("wallet host error %d: %s", e.Code, e.Message)
}

func (b *Bridge) call(ctx context.Context, method string, params, result interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	}

	deadline := time.Now().Add(b.callTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := b.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := b.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	for {
		var resp rpcResponse
		if err := b.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("failed to read %s response: %w", method, err)
		}
		// The host may interleave notifications; only our reply counts.
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("malformed %s result: %w", method, err)
		}
		return nil
	}
}

type authorizeParams struct {
	Cluster  string           `json:"cluster"`
	Identity core.AppIdentity `json:"identity"`
}

func (b *Bridge) Authorize(ctx context.Context, cluster string, identity core.AppIdentity) (*ports.AuthorizeResult, error) {
	var result ports.AuthorizeResult
	if err := b.call(ctx, methodAuthorize, authorizeParams{Cluster: cluster, Identity: identity}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type reauthorizeParams struct {
	AuthToken string           `json:"auth_token"`
	Identity  core.AppIdentity `json:"identity"`
}

func (b *Bridge) Reauthorize(ctx context.Context, authToken string, identity core.AppIdentity) (*ports.AuthorizeResult, error) {
	var result ports.AuthorizeResult
	if err := b.call(ctx, methodReauthorize, reauthorizeParams{AuthToken: authToken, Identity: identity}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type deauthorizeParams struct {
	AuthToken string `json:"auth_token"`
}

func (b *Bridge) Deauthorize(ctx context.Context, authToken string) error {
	return b.call(ctx, methodDeauthorize, deauthorizeParams{AuthToken: authToken}, nil)
}

type signParams struct {
	Transactions []string `json:"transactions"` // base64 wire-format payloads
}

type signResult struct {
	SignedTransactions []string `json:"signed_transactions"`
}

func (b *Bridge) SignTransactions(ctx context.Context, txs [][]byte) ([][]byte, error) {
	params := signParams{Transactions: make([]string, len(txs))}
	for i, raw := range txs {
		params.Transactions[i] = base64.StdEncoding.EncodeToString(raw)
	}

	var result signResult
	if err := b.call(ctx, methodSignTransactions, params, &result); err != nil {
		return nil, err
	}

	signed := make([][]byte, len(result.SignedTransactions))
	for i, encoded := range result.SignedTransactions {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("malformed signed transaction %d: %w", i, err)
		}
		signed[i] = raw
	}
	return signed, nil
}
