package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukti-app/walletd/core"
	"github.com/yukti-app/walletd/txbuilder"
)

// rpcNode is a canned JSON-RPC ledger node. handle returns the result JSON
// for a method, or an error JSON when errJSON is non-empty.
func rpcNode(t *testing.T, handle func(method string) (result, errJSON string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		result, errJSON := handle(req.Method)
		w.Header().Set("Content-Type", "application/json")
		if errJSON != "" {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":%s}`, req.ID, errJSON)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
}

func signedTestTransaction(t *testing.T) *solana.Transaction {
	t.Helper()
	wallet := solana.NewWallet()
	ix, err := txbuilder.BuildTransfer(wallet.PublicKey(), solana.SystemProgramID.String(), 1_000)
	require.NoError(t, err)
	tx, err := txbuilder.NewTransaction([]solana.Instruction{ix}, wallet.PublicKey(), solana.Hash{})
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return &wallet.PrivateKey
	})
	require.NoError(t, err)
	return tx
}

func testSignature() solana.Signature {
	var sig solana.Signature
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	return sig
}

func TestBalanceUnitConversion(t *testing.T) {
	node := rpcNode(t, func(method string) (string, string) {
		require.Equal(t, "getBalance", method)
		return `{"context":{"slot":1},"value":2500000000}`, ""
	})
	defer node.Close()

	client := New(node.URL)
	sol, err := client.Balance(context.Background(), solana.SystemProgramID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, sol)
}

func TestBalanceZeroIsNotAnError(t *testing.T) {
	node := rpcNode(t, func(method string) (string, string) {
		return `{"context":{"slot":1},"value":0}`, ""
	})
	defer node.Close()

	sol, err := New(node.URL).Balance(context.Background(), solana.SystemProgramID)
	require.NoError(t, err)
	assert.Zero(t, sol)
}

func TestLatestBlockhash(t *testing.T) {
	want := solana.MustHashFromBase58("Vote111111111111111111111111111111111111111")
	node := rpcNode(t, func(method string) (string, string) {
		require.Equal(t, "getLatestBlockhash", method)
		return fmt.Sprintf(`{"context":{"slot":10},"value":{"blockhash":"%s","lastValidBlockHeight":100}}`, want), ""
	})
	defer node.Close()

	hash, err := New(node.URL).LatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestSubmitAndConfirm(t *testing.T) {
	want := testSignature()
	node := rpcNode(t, func(method string) (string, string) {
		switch method {
		case "sendTransaction":
			return fmt.Sprintf(`"%s"`, want), ""
		case "getSignatureStatuses":
			return `{"context":{"slot":5},"value":[{"slot":5,"confirmations":1,"err":null,"confirmationStatus":"confirmed"}]}`, ""
		default:
			t.Fatalf("unexpected method %s", method)
			return "", ""
		}
	})
	defer node.Close()

	client := New(node.URL, WithConfirmTimeout(2*time.Second), WithPollInterval(10*time.Millisecond))
	sig, err := client.SubmitAndConfirm(context.Background(), signedTestTransaction(t))
	require.NoError(t, err)
	assert.Equal(t, want, sig)
}

func TestSubmitAndConfirmTimeout(t *testing.T) {
	want := testSignature()
	node := rpcNode(t, func(method string) (string, string) {
		switch method {
		case "sendTransaction":
			return fmt.Sprintf(`"%s"`, want), ""
		default:
			// Never confirms.
			return `{"context":{"slot":5},"value":[null]}`, ""
		}
	})
	defer node.Close()

	client := New(node.URL, WithConfirmTimeout(150*time.Millisecond), WithPollInterval(10*time.Millisecond))
	_, err := client.SubmitAndConfirm(context.Background(), signedTestTransaction(t))
	require.Error(t, err)
	assert.Equal(t, core.KindConfirmationTimeout, core.KindOf(err))
}

func TestSubmitRejectedByNode(t *testing.T) {
	node := rpcNode(t, func(method string) (string, string) {
		return "", `{"code":-32002,"message":"Transaction simulation failed: insufficient funds"}`
	})
	defer node.Close()

	_, err := New(node.URL).SubmitAndConfirm(context.Background(), signedTestTransaction(t))
	require.Error(t, err)
	assert.Equal(t, core.KindSubmissionFailed, core.KindOf(err))
}

func TestSubmitFailedOnChain(t *testing.T) {
	want := testSignature()
	node := rpcNode(t, func(method string) (string, string) {
		switch method {
		case "sendTransaction":
			return fmt.Sprintf(`"%s"`, want), ""
		default:
			return `{"context":{"slot":5},"value":[{"slot":5,"confirmations":null,"err":{"InstructionError":[0,{"Custom":1}]},"confirmationStatus":"processed"}]}`, ""
		}
	})
	defer node.Close()

	client := New(node.URL, WithConfirmTimeout(2*time.Second), WithPollInterval(10*time.Millisecond))
	_, err := client.SubmitAndConfirm(context.Background(), signedTestTransaction(t))
	require.Error(t, err)
	assert.Equal(t, core.KindSubmissionFailed, core.KindOf(err))
}
