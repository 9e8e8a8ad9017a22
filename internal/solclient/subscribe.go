// internal/solclient/subscribe.go
package solclient

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// wsClient dials the websocket endpoint once and reuses the connection for
// every subscription.
func (c *Client) wsClient(ctx context.Context) (*ws.Client, error) {
	if c.wsURL == "" {
		return nil, errors.New("no websocket URL configured")
	}
	c.wsOnce.Do(func() {
		c.ws, c.wsErr = ws.Connect(ctx, c.wsURL)
		if c.wsErr != nil {
			c.logger.Error("Failed to connect to websocket",
				zap.String("url", c.wsURL), zap.Error(c.wsErr))
		}
	})
	return c.ws, c.wsErr
}

// SubscribeAccount registers fn for every change of the given account and
// returns an unsubscribe function. Each call opens its own logical
// subscription; cancelling the returned function (or the context) closes
// exactly that subscription.
func (c *Client) SubscribeAccount(ctx context.Context, key solana.PublicKey, commitment rpc.CommitmentType, fn func(AccountInfo)) (func(), error) {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	wsc, err := c.wsClient(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := wsc.AccountSubscribeWithOpts(key, commitment, solana.EncodingBase64)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)

	// Recv blocks without taking a context, so teardown happens from the
	// side: Unsubscribe makes the pending Recv return an error.
	go func() {
		<-subCtx.Done()
		sub.Unsubscribe()
	}()

	go func() {
		for {
			res, err := sub.Recv()
			if err != nil {
				if subCtx.Err() == nil {
					c.logger.Debug("Account subscription closed",
						zap.String("account", key.String()), zap.Error(err))
				}
				return
			}
			if res == nil {
				continue
			}
			fn(AccountInfo{
				Data:     res.Value.Data.GetBinary(),
				Owner:    res.Value.Owner,
				Lamports: res.Value.Lamports,
				Slot:     res.Context.Slot,
			})
		}
	}()

	return cancel, nil
}
