package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bridge-syncer/internal/clients"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMRouteAdapter reconciles tickets minted on an EVM execution chain.
// The route service maps a ticket id to the mint transaction hash; the
// chain itself is then asked for the receipt, so a finalization is
// only reported once the mint is actually on chain and succeeded.
type EVMRouteAdapter struct {
	chainID  string
	routeURL string
	http     *http.Client
	eth      *ethclient.Client
}

// NewEVMRouteAdapter dials the chain RPC and returns the adapter
func NewEVMRouteAdapter(chainID, routeURL, rpcURL string, timeout time.Duration) (*EVMRouteAdapter, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc for %s: %w", chainID, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EVMRouteAdapter{
		chainID:  chainID,
		routeURL: routeURL,
		http:     &http.Client{Timeout: timeout},
		eth:      eth,
	}, nil
}

func (a *EVMRouteAdapter) ChainID() string {
	return a.chainID
}

// evmMintTxResponse is the route service's ticket lookup response.
type evmMintTxResponse struct {
	MintTxHash string `json:"mint_tx_hash"`
}

// FinalizationStatus resolves the mint tx hash for the ticket and
// checks its receipt status on chain.
func (a *EVMRouteAdapter) FinalizationStatus(ctx context.Context, ticketID string) (FinalizationOutcome, error) {
	var lookup evmMintTxResponse
	url := fmt.Sprintf("%s/mint_tx/%s", a.routeURL, ticketID)
	if err := getJSON(ctx, a.http, "evm_mint_tx", url, &lookup); err != nil {
		if err == errNotTracked {
			return FinalizationOutcome{Kind: OutcomeUnknown}, nil
		}
		return FinalizationOutcome{}, err
	}
	if lookup.MintTxHash == "" {
		// route has accepted the ticket but not submitted the mint yet
		return FinalizationOutcome{Kind: OutcomePending}, nil
	}

	receipt, err := a.eth.TransactionReceipt(ctx, common.HexToHash(lookup.MintTxHash))
	if errors.Is(err, ethereum.NotFound) {
		// submitted but not mined yet
		return FinalizationOutcome{Kind: OutcomePending}, nil
	}
	if err != nil {
		return FinalizationOutcome{}, &clients.TransportError{Op: "evm_receipt", Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return FinalizationOutcome{
			Kind:   OutcomeFailed,
			Reason: fmt.Sprintf("mint tx %s reverted", lookup.MintTxHash),
		}, nil
	}
	return Finalized(lookup.MintTxHash), nil
}
