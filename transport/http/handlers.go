package http

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/yukti-app/walletd/chain"
	"github.com/yukti-app/walletd/core"
	"github.com/yukti-app/walletd/ports"
	"github.com/yukti-app/walletd/service"
	"github.com/yukti-app/walletd/state"
	"github.com/yukti-app/walletd/txbuilder"
)

var lamportsPerSol = decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))

// WalletHandlers contains HTTP handlers for the wallet endpoints. They
// orchestrate the build → sign → submit → refresh flow on behalf of the UI.
type WalletHandlers struct {
	session   *service.SessionManager
	chain     *chain.Client
	state     *state.Store
	events    ports.EventPublisher // optional
	programID solana.PublicKey
}

// NewWalletHandlers creates new wallet handlers.
func NewWalletHandlers(
	session *service.SessionManager,
	chainClient *chain.Client,
	stateStore *state.Store,
	events ports.EventPublisher,
	programID solana.PublicKey,
) *WalletHandlers {
	return &WalletHandlers{
		session:   session,
		chain:     chainClient,
		state:     stateStore,
		events:    events,
		programID: programID,
	}
}

// Connect handles the connect request.
func (h *WalletHandlers) Connect(c *gin.Context) {
	session, err := h.session.Connect(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": session.Address})
}

// Disconnect handles the disconnect request.
func (h *WalletHandlers) Disconnect(c *gin.Context) {
	if err := h.session.Disconnect(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "wallet disconnected"})
}

// Reconnect attempts a silent reconnection from stored credentials.
func (h *WalletHandlers) Reconnect(c *gin.Context) {
	reconnected, err := h.session.ReconnectIfPossible(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reconnected": reconnected})
}

// Status returns the current connection-state snapshot.
func (h *WalletHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Snapshot())
}

// Balance fetches the on-chain balance for the connected wallet and caches it
// in the connection state.
func (h *WalletHandlers) Balance(c *gin.Context) {
	session, ok := h.session.Session()
	if !ok {
		abortWithError(c, core.Errorf(core.KindNotConnected, "wallet is not connected"))
		return
	}

	sol, err := h.chain.Balance(c.Request.Context(), session.PublicKey)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.state.SetBalance(sol)
	c.JSON(http.StatusOK, gin.H{"address": session.Address, "sol_balance": sol})
}

// WithdrawRequest asks for a transfer of SOL to an external address.
type WithdrawRequest struct {
	To        string `json:"to" binding:"required"`
	AmountSol string `json:"amount_sol" binding:"required"`
}

// Withdraw builds, signs and submits a system transfer from the connected
// wallet.
func (h *WalletHandlers) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	amount, err := decimal.NewFromString(req.AmountSol)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	lamports := amount.Mul(lamportsPerSol)
	if !lamports.IsInteger() || lamports.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive multiple of one lamport"})
		return
	}

	session, ok := h.session.Session()
	if !ok {
		abortWithError(c, core.Errorf(core.KindNotConnected, "wallet is not connected"))
		return
	}

	ix, err := txbuilder.BuildTransfer(session.PublicKey, req.To, uint64(lamports.IntPart()))
	if err != nil {
		abortWithError(c, err)
		return
	}

	signature, err := h.signAndSubmit(c, session.PublicKey, ix)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": signature.String()})
}

// BidRequest asks for an escrowed on-chain bid on a poll option.
type BidRequest struct {
	PollID         string `json:"poll_id" binding:"required"`
	OptionID       string `json:"option_id" binding:"required"`
	AmountLamports uint64 `json:"amount_lamports" binding:"required"`
}

// PlaceBid builds, signs and submits an escrow program invocation.
func (h *WalletHandlers) PlaceBid(c *gin.Context) {
	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session, ok := h.session.Session()
	if !ok {
		abortWithError(c, core.Errorf(core.KindNotConnected, "wallet is not connected"))
		return
	}

	ix, err := txbuilder.BuildPlaceBid(txbuilder.PlaceBidParams{
		PollID:         req.PollID,
		OptionID:       req.OptionID,
		AmountLamports: req.AmountLamports,
		Bidder:         session.PublicKey,
		ProgramID:      h.programID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	signature, err := h.signAndSubmit(c, session.PublicKey, ix)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.events != nil {
		err := h.events.PublishBidPlaced(c.Request.Context(),
			session.Address, req.PollID, req.OptionID, req.AmountLamports, signature.String())
		if err != nil {
			log.WithError(err).Warn("failed to publish wallet.bid_placed event")
		}
	}

	c.JSON(http.StatusOK, gin.H{"signature": signature.String()})
}

// signAndSubmit runs the shared tail of every transaction flow: fresh block
// reference, wallet signature, submission with bounded confirmation, balance
// refresh.
func (h *WalletHandlers) signAndSubmit(c *gin.Context, feePayer solana.PublicKey, instructions ...solana.Instruction) (solana.Signature, error) {
	ctx := c.Request.Context()

	h.state.SetLoading(true)
	defer h.state.SetLoading(false)

	blockhash, err := h.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := txbuilder.NewTransaction(instructions, feePayer, blockhash)
	if err != nil {
		return solana.Signature{}, err
	}

	signedTx, err := h.session.SignTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	signature, err := h.chain.SubmitAndConfirm(ctx, signedTx)
	if err != nil {
		return solana.Signature{}, err
	}

	// Best effort: a failed refresh must not mask a confirmed transaction.
	if sol, err := h.chain.Balance(ctx, feePayer); err == nil {
		h.state.SetBalance(sol)
	} else {
		log.WithError(err).Warn("balance refresh after submission failed")
	}
	return signature, nil
}

// abortWithError maps error kinds to HTTP status codes and surfaces the
// human-readable message.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch core.KindOf(err) {
	case core.KindInvalidAmount, core.KindInvalidAddress:
		status = http.StatusBadRequest
	case core.KindAuthorizationRejected, core.KindStaleSession:
		status = http.StatusUnauthorized
	case core.KindNotConnected:
		status = http.StatusConflict
	case core.KindSubmissionFailed:
		status = http.StatusBadGateway
	case core.KindConfirmationTimeout:
		status = http.StatusGatewayTimeout
	}

	c.JSON(status, gin.H{"error": core.UserMessage(err), "kind": string(core.KindOf(err))})
}
