package service

import (
	"context"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"

	"github.com/yukti-app/walletd/core"
	"github.com/yukti-app/walletd/ports"
	"github.com/yukti-app/walletd/state"
)

const (
	addressKey   = "wallet:address"
	authTokenKey = "wallet:auth_token"
)

// SessionManager owns the full authorization lifecycle against the external
// wallet signer. It is the only writer of the connection state and of the
// persisted credential record.
//
// All lifecycle operations are serialized behind a single mutex-style latch:
// a second Connect issued while one is outstanding waits for the first to
// settle instead of racing it.
type SessionManager struct {
	ops chan struct{} // capacity 1, held for the duration of an operation

	signer   ports.SignerBridge
	store    ports.CredentialStore
	state    *state.Store
	events   ports.EventPublisher // optional
	cluster  string
	identity core.AppIdentity

	session *core.Session // nil when disconnected, guarded by ops
}

func NewSessionManager(
	signer ports.SignerBridge,
	store ports.CredentialStore,
	stateStore *state.Store,
	events ports.EventPublisher,
	cluster string,
	identity core.AppIdentity,
) *SessionManager {
	return &SessionManager{
		ops:      make(chan struct{}, 1),
		signer:   signer,
		store:    store,
		state:    stateStore,
		events:   events,
		cluster:  cluster,
		identity: identity,
	}
}

func (m *SessionManager) lock()   { m.ops <- struct{}{} }
func (m *SessionManager) unlock() { <-m.ops }

// Session returns a copy of the active session, if any.
func (m *SessionManager) Session() (core.Session, bool) {
	m.lock()
	defer m.unlock()
	if m.session == nil {
		return core.Session{}, false
	}
	return *m.session, true
}

// Connected reports whether an active session exists.
func (m *SessionManager) Connected() bool {
	_, ok := m.Session()
	return ok
}

// Connect opens a session with the signer host. Safe to call when already
// connected: the signer simply issues a fresh authorization.
func (m *SessionManager) Connect(ctx context.Context) (core.Session, error) {
	m.lock()
	defer m.unlock()

	m.state.SetConnecting()

	res, err := m.signer.Authorize(ctx, m.cluster, m.identity)
	if err != nil {
		cerr := core.NewError(core.KindAuthorizationRejected, "wallet authorization was rejected", err)
		m.state.SetError(cerr.Message)
		return core.Session{}, cerr
	}

	session, err := sessionFromAccounts(res)
	if err != nil {
		m.state.SetError(core.UserMessage(err))
		return core.Session{}, err
	}

	if err := m.persistCredentials(ctx, session); err != nil {
		m.state.SetError("failed to persist wallet credentials")
		return core.Session{}, err
	}

	m.session = session
	m.state.SetConnected(session.Address)
	log.WithField("address", session.Address).Info("wallet connected")

	if m.events != nil {
		if err := m.events.PublishConnected(ctx, session.Address); err != nil {
			log.WithError(err).Warn("failed to publish wallet.connected event")
		}
	}

	return *session, nil
}

// Disconnect tears the session down. Deauthorization with the signer is
// advisory: its failure is logged and local state is cleared regardless.
func (m *SessionManager) Disconnect(ctx context.Context) error {
	m.lock()
	defer m.unlock()

	var address string
	if m.session != nil {
		address = m.session.Address
		if err := m.signer.Deauthorize(ctx, m.session.AuthToken); err != nil {
			log.WithError(err).Warn("wallet deauthorization failed, clearing local session anyway")
		}
	}

	m.session = nil
	m.state.SetDisconnected()

	if err := m.store.MultiRemove(ctx, []string{addressKey, authTokenKey}); err != nil {
		return fmt.Errorf("failed to clear credential record: %w", err)
	}

	if address != "" {
		log.WithField("address", address).Info("wallet disconnected")
		if m.events != nil {
			if err := m.events.PublishDisconnected(ctx, address); err != nil {
				log.WithError(err).Warn("failed to publish wallet.disconnected event")
			}
		}
	}
	return nil
}

// ReconnectIfPossible re-establishes a session from the persisted credential
// record without user interaction. It returns false without any network call
// when no record exists, and true without any network call when a session is
// already live. A rejected stored token is deleted before returning so the
// next attempt does not retry a dead token.
func (m *SessionManager) ReconnectIfPossible(ctx context.Context) (bool, error) {
	m.lock()
	defer m.unlock()

	if m.session != nil {
		return true, nil
	}

	storedAddress, err := m.store.GetItem(ctx, addressKey)
	if err != nil {
		return false, fmt.Errorf("failed to read credential record: %w", err)
	}
	storedToken, err := m.store.GetItem(ctx, authTokenKey)
	if err != nil {
		return false, fmt.Errorf("failed to read credential record: %w", err)
	}
	if storedAddress == "" || storedToken == "" {
		return false, nil
	}

	m.state.SetConnecting()

	res, err := m.signer.Reauthorize(ctx, storedToken, m.identity)
	if err != nil {
		// Stale-token invariant: the record must not outlive its rejection.
		log.WithError(err).WithField("token", redactToken(storedToken)).
			Warn("reauthorization failed, clearing stored credentials")
		if rmErr := m.store.MultiRemove(ctx, []string{addressKey, authTokenKey}); rmErr != nil {
			m.state.ClearConnecting()
			return false, fmt.Errorf("failed to clear stale credential record: %w", rmErr)
		}
		m.state.ClearConnecting()
		return false, nil
	}

	session, err := sessionFromAccounts(res)
	if err != nil {
		m.state.SetError(core.UserMessage(err))
		return false, err
	}
	if err := m.persistCredentials(ctx, session); err != nil {
		m.state.SetError("failed to persist wallet credentials")
		return false, err
	}

	m.session = session
	m.state.SetConnected(session.Address)
	log.WithField("address", session.Address).Info("wallet reconnected")
	return true, nil
}

// SignTransaction signs a single transaction through the wallet host. The
// instruction contents are passed through untouched.
func (m *SessionManager) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	signed, err := m.SignAllTransactions(ctx, []*solana.Transaction{tx})
	if err != nil {
		return nil, err
	}
	return signed[0], nil
}

// SignAllTransactions signs a batch of transactions in order. It requires an
// active session and never attempts to connect on its own. The stored token
// is refreshed via reauthorize immediately before signing, since signer
// implementations may treat tokens as short-lived.
func (m *SessionManager) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	m.lock()
	defer m.unlock()

	if m.session == nil {
		cerr := core.Errorf(core.KindNotConnected, "wallet is not connected")
		m.state.SetError(cerr.Message)
		return nil, cerr
	}

	res, err := m.signer.Reauthorize(ctx, m.session.AuthToken, m.identity)
	if err != nil {
		// The token we held was dead. Tear down so callers fall back to a
		// full connect, per the stale-token invariant.
		cerr := core.NewError(core.KindStaleSession, "wallet session expired, reconnect required", err)
		m.session = nil
		if rmErr := m.store.MultiRemove(ctx, []string{addressKey, authTokenKey}); rmErr != nil {
			log.WithError(rmErr).Error("failed to clear stale credential record")
		}
		m.state.SetDisconnected()
		m.state.SetError(cerr.Message)
		return nil, cerr
	}

	// Reauthorize rotates the token; keep memory and durable storage in step.
	m.session.AuthToken = res.AuthToken
	if err := m.store.SetItem(ctx, authTokenKey, res.AuthToken); err != nil {
		return nil, fmt.Errorf("failed to persist rotated auth token: %w", err)
	}

	payloads := make([][]byte, len(txs))
	for i, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize transaction %d: %w", i, err)
		}
		payloads[i] = raw
	}

	signedRaw, err := m.signer.SignTransactions(ctx, payloads)
	if err != nil {
		cerr := core.NewError(core.KindAuthorizationRejected, "wallet declined to sign", err)
		m.state.SetError(cerr.Message)
		return nil, cerr
	}
	if len(signedRaw) != len(txs) {
		return nil, fmt.Errorf("signer returned %d transactions, expected %d", len(signedRaw), len(txs))
	}

	signed := make([]*solana.Transaction, len(signedRaw))
	for i, raw := range signedRaw {
		tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode signed transaction %d: %w", i, err)
		}
		signed[i] = tx
	}
	return signed, nil
}

func (m *SessionManager) persistCredentials(ctx context.Context, s *core.Session) error {
	if err := m.store.SetItem(ctx, addressKey, s.Address); err != nil {
		return fmt.Errorf("failed to persist wallet address: %w", err)
	}
	if err := m.store.SetItem(ctx, authTokenKey, s.AuthToken); err != nil {
		return fmt.Errorf("failed to persist auth token: %w", err)
	}
	return nil
}

// sessionFromAccounts builds a Session from an authorize/reauthorize result.
// Policy: the first returned account is the session identity.
func sessionFromAccounts(res *ports.AuthorizeResult) (*core.Session, error) {
	if len(res.Accounts) == 0 {
		return nil, core.Errorf(core.KindAuthorizationRejected, "signer returned no accounts")
	}

	raw, err := base64.StdEncoding.DecodeString(res.Accounts[0].Address)
	if err != nil {
		return nil, core.NewError(core.KindInvalidAddress, "signer returned a malformed account address", err)
	}
	if len(raw) != solana.PublicKeyLength {
		return nil, core.Errorf(core.KindInvalidAddress, "signer returned a %d-byte public key", len(raw))
	}

	pub := solana.PublicKeyFromBytes(raw)
	return &core.Session{
		Address:   pub.String(),
		PublicKey: pub,
		AuthToken: res.AuthToken,
	}, nil
}

// redactToken keeps logs free of usable credentials.
func redactToken(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "..."
}
