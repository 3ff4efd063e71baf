package core

import "github.com/gagliardetto/solana-go"

// AppIdentity identifies this application to the wallet signer host during
// authorize and reauthorize requests.
type AppIdentity struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	Icon string `json:"icon,omitempty"`
}

// Session represents one authorized binding between the app and the external
// wallet signer.
type Session struct {
	Address   string           // base58 display address, derived from PublicKey
	PublicKey solana.PublicKey // raw identity, never persisted
	AuthToken string           // opaque handle issued by the signer
}

// Credentials is the durable key-value record that allows a silent
// reconnection. Its presence implies a prior successful authorization.
type Credentials struct {
	Address   string
	AuthToken string
}

// ConnectionState is the observable projection of at most one active session
// plus operational flags. It is overwritten wholesale on each transition.
type ConnectionState struct {
	Connected  bool    `json:"connected"`
	Address    string  `json:"address,omitempty"`
	SolBalance float64 `json:"sol_balance"`
	Connecting bool    `json:"connecting"`
	Loading    bool    `json:"loading"`
	LastError  string  `json:"error,omitempty"`
}
