// internal/solclient/client.go
package solclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// NewClient creates a client over the given RPC endpoints. The websocket
// endpoint is dialed lazily on first subscription.
func NewClient(rpcURLs []string, wsURL string, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	var clients []*RPCClient
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}

		client := &RPCClient{
			Client:  rpc.New(urlStr),
			URL:     urlStr,
			active:  true,
			metrics: &RPCMetrics{},
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	c := &Client{
		rpcClients: clients,
		wsURL:      wsURL,
		logger:     logger,
	}

	if err := c.validateConnections(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to validate connections: %w", err)
	}

	return c, nil
}

// testConnection checks that one RPC endpoint is reachable and healthy.
func (c *Client) testConnection(ctx context.Context, rpcClient *RPCClient) error {
	version, err := rpcClient.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	_, err = rpcClient.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", rpcClient.URL),
		zap.String("solana_core", version.SolanaCore))

	return nil
}

func (c *Client) validateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, len(c.rpcClients))

	for _, client := range c.rpcClients {
		wg.Add(1)
		go func(rpcClient *RPCClient) {
			defer wg.Done()

			var lastErr error
			for attempt := 0; attempt < maxRetries; attempt++ {
				start := time.Now()
				if err := c.testConnection(ctx, rpcClient); err != nil {
					lastErr = err
					rpcClient.updateMetrics(false, time.Since(start))
					time.Sleep(retryDelay)
					continue
				}
				rpcClient.updateMetrics(true, time.Since(start))
				return
			}
			if lastErr != nil {
				errChan <- fmt.Errorf("failed to connect to %s: %w", rpcClient.URL, lastErr)
				rpcClient.setActive(false)
			}
		}(client)
	}

	wg.Wait()
	close(errChan)

	if !c.hasActiveClients() {
		return errors.New("no active RPC connections available")
	}

	return nil
}

// FetchAccount fetches the current raw state of one account. It returns
// ErrAccountNotFound when the account does not exist; that outcome does
// not demote the endpoint.
func (c *Client) FetchAccount(ctx context.Context, key solana.PublicKey, commitment rpc.CommitmentType) (*AccountInfo, error) {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		client := c.getNextClient()
		if client == nil {
			return nil, errors.New("no active RPC clients available")
		}

		start := time.Now()
		result, err := client.Client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: commitment,
		})
		if err != nil {
			if errors.Is(err, rpc.ErrNotFound) {
				client.updateMetrics(true, time.Since(start))
				return nil, ErrAccountNotFound
			}
			client.updateMetrics(false, time.Since(start))
			lastErr = err
			client.setActive(false)
			continue
		}
		client.updateMetrics(true, time.Since(start))

		if result == nil || result.Value == nil {
			return nil, ErrAccountNotFound
		}

		return &AccountInfo{
			Data:     result.Value.Data.GetBinary(),
			Owner:    result.Value.Owner,
			Lamports: result.Value.Lamports,
			Slot:     result.RPCContext.Context.Slot,
		}, nil
	}

	return nil, fmt.Errorf("failed to get account info after %d attempts: %w", maxRetries, lastErr)
}

// GetLatestBlockhash returns a recent blockhash usable for a transaction.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		client := c.getNextClient()
		if client == nil {
			return solana.Hash{}, errors.New("no active RPC clients available")
		}

		start := time.Now()
		result, err := client.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		client.updateMetrics(err == nil, time.Since(start))

		if err != nil {
			lastErr = err
			client.setActive(false)
			continue
		}

		return result.Value.Blockhash, nil
	}

	return solana.Hash{}, fmt.Errorf("failed to get latest blockhash after %d attempts: %w", maxRetries, lastErr)
}

// SendTransaction submits one signed transaction exactly once. The RPC
// error is returned verbatim so program-level rejections stay readable
// upstream, and a rejection never demotes the endpoint: the node did its
// job by relaying the program's answer.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	client := c.getNextClient()
	if client == nil {
		return solana.Signature{}, errors.New("no active RPC clients available")
	}

	start := time.Now()
	sig, err := client.Client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	client.updateMetrics(err == nil, time.Since(start))

	if err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func (c *Client) hasActiveClients() bool {
	for _, client := range c.rpcClients {
		if client.isActive() {
			return true
		}
	}
	return false
}

func (c *Client) getNextClient() *RPCClient {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	initialIndex := c.currIndex
	for {
		c.currIndex = (c.currIndex + 1) % len(c.rpcClients)
		if c.rpcClients[c.currIndex].isActive() {
			return c.rpcClients[c.currIndex]
		}
		if c.currIndex == initialIndex {
			break
		}
	}

	// Every endpoint has been demoted. Demotion tracks transient faults,
	// so re-arm the whole pool instead of staying dead until restart.
	c.logger.Warn("All RPC endpoints inactive, re-arming pool",
		zap.Int("endpoints", len(c.rpcClients)))
	for _, client := range c.rpcClients {
		client.setActive(true)
		client.metrics.reset()
	}

	c.currIndex = (initialIndex + 1) % len(c.rpcClients)
	return c.rpcClients[c.currIndex]
}
