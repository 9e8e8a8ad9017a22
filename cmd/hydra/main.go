// cmd/hydra/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hydraswap-io/hydra-go/internal/assets"
	"github.com/hydraswap-io/hydra-go/internal/commands"
	"github.com/hydraswap-io/hydra-go/internal/config"
	"github.com/hydraswap-io/hydra-go/internal/flow"
	"github.com/hydraswap-io/hydra-go/internal/hydramath"
	"github.com/hydraswap-io/hydra-go/internal/logger"
	"github.com/hydraswap-io/hydra-go/internal/pool"
	"github.com/hydraswap-io/hydra-go/internal/solclient"
	"github.com/hydraswap-io/hydra-go/internal/wallet"
)

func main() {
	root := &cobra.Command{
		Use:          "hydra",
		Short:        "Hydra pool client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "configs/config.json", "config file path")

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap one pool token for the other",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("from", "", "source asset (symbol or mint)")
	swapCmd.Flags().String("to", "", "destination asset (symbol or mint)")
	swapCmd.Flags().Uint64("amount", 0, "input amount in smallest units")
	swapCmd.Flags().Uint64("expected-out", 0, "quoted output amount in smallest units")
	swapCmd.Flags().Uint64("slippage-bps", 0, "slippage tolerance override in basis points")
	root.AddCommand(swapCmd)

	addCmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Deposit both tokens into a pool",
		RunE:  runAddLiquidity,
	}
	addCmd.Flags().String("token-x", "", "first asset (symbol or mint)")
	addCmd.Flags().String("token-y", "", "second asset (symbol or mint)")
	addCmd.Flags().Uint64("amount-x", 0, "first token amount in smallest units")
	addCmd.Flags().Uint64("amount-y", 0, "second token amount in smallest units")
	addCmd.Flags().Uint64("slippage-bps", 0, "slippage tolerance override in basis points")
	root.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn a share of the LP balance and withdraw",
		RunE:  runRemoveLiquidity,
	}
	removeCmd.Flags().String("token-x", "", "first asset (symbol or mint)")
	removeCmd.Flags().String("token-y", "", "second asset (symbol or mint)")
	removeCmd.Flags().Uint64("percent-bps", 10000, "share of the LP balance to burn in basis points")
	root.AddCommand(removeCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the merged pool view until interrupted",
		RunE:  runWatch,
	}
	watchCmd.Flags().String("token-x", "", "first asset (symbol or mint)")
	watchCmd.Flags().String("token-y", "", "second asset (symbol or mint)")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *solclient.Client
	wallet   *wallet.Wallet
	registry *assets.Registry
	resolver *pool.Resolver
	composer *pool.Composer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := solclient.NewClient(cfg.RPCList, cfg.WebSocketURL, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}

	w, err := wallet.NewWallet(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	registry, err := assets.Load(cfg.AssetList)
	if err != nil {
		return nil, err
	}

	resolver := pool.NewResolver(client, cfg.Program(), w.PublicKey, log.Logger, pool.ResolverOptions{
		Commitment: cfg.CommitmentType(),
		MaxRetries: uint(cfg.Retries),
		RetryDelay: pool.DefaultResolverOptions().RetryDelay,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		wallet:   w,
		registry: registry,
		resolver: resolver,
		composer: pool.NewComposer(resolver, cfg.CommitmentType(), log.Logger),
	}, nil
}

func (a *app) executor(calc hydramath.Calculator) *commands.Executor {
	return commands.NewExecutor(a.client, a.wallet, calc, a.cfg.Program(), a.log.Logger)
}

// slippage returns the flag override or the configured default.
func (a *app) slippage(cmd *cobra.Command) uint64 {
	if cmd.Flags().Changed("slippage-bps") {
		bps, _ := cmd.Flags().GetUint64("slippage-bps")
		return bps
	}
	return a.cfg.SlippageBps
}

func (a *app) lookup(cmd *cobra.Command, flag string) (*assets.Asset, error) {
	name, _ := cmd.Flags().GetString(flag)
	if name == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}
	return a.registry.Lookup(a.cfg.Network, name)
}

// currentView resolves the bundle and waits for the first merged view
// carrying pool state knowledge.
func (a *app) currentView(ctx context.Context, mintA, mintB solana.PublicKey) (pool.PoolView, error) {
	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	views, err := a.composer.Watch(viewCtx, mintA, mintB)
	if err != nil {
		return pool.PoolView{}, err
	}

	var view pool.PoolView
	for i := 0; i < 8; i++ {
		select {
		case v, ok := <-views:
			if !ok {
				return view, nil
			}
			view = v
		case <-ctx.Done():
			return pool.PoolView{}, ctx.Err()
		}
	}
	return view, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// txFlow is the surface shared by the transaction flows.
type txFlow interface {
	OnSendSubmit(ctx context.Context) error
	State() flow.State
	LastError() string
	SetNotify(func(flow.State))
}

// driveFlow walks a flow through confirmation and submission and waits
// for the async outcome: the first submit confirms the entered input,
// the second fires the transaction.
func driveFlow(ctx context.Context, f txFlow) error {
	settled := make(chan flow.State, 1)
	f.SetNotify(func(s flow.State) { settled <- s })

	if err := f.OnSendSubmit(ctx); err != nil {
		return err
	}
	if err := f.OnSendSubmit(ctx); err != nil {
		return err
	}

	select {
	case state := <-settled:
		if state == flow.StateError {
			return fmt.Errorf("%s", f.LastError())
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// viewProvider resolves the merged pool view for a mint pair on demand.
func (a *app) viewProvider(mintA, mintB solana.PublicKey) flow.ViewProvider {
	return func(ctx context.Context) (pool.PoolView, error) {
		return a.currentView(ctx, mintA, mintB)
	}
}

func runSwap(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext()
	defer stop()

	from, err := a.lookup(cmd, "from")
	if err != nil {
		return err
	}
	to, err := a.lookup(cmd, "to")
	if err != nil {
		return err
	}
	fromMint, err := from.Mint()
	if err != nil {
		return err
	}
	toMint, err := to.Mint()
	if err != nil {
		return err
	}

	amount, _ := cmd.Flags().GetUint64("amount")
	expectedOut, _ := cmd.Flags().GetUint64("expected-out")
	if expectedOut == 0 {
		return fmt.Errorf("--expected-out is required: the curve quote is supplied, not computed here")
	}

	swapFlow := flow.NewSwapFlow(
		a.executor(hydramath.FixedQuote{Out: expectedOut}),
		a.viewProvider(fromMint, toMint),
		a.log.Logger,
	)
	swapFlow.From = flow.TokenField{Asset: *from, Amount: amount}
	swapFlow.To = flow.TokenField{Asset: *to}
	swapFlow.SlippageBps = a.slippage(cmd)

	if err := driveFlow(ctx, swapFlow); err != nil {
		return err
	}

	fmt.Printf("swap submitted: %s\n", swapFlow.Signature)
	return nil
}

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext()
	defer stop()

	tokenX, err := a.lookup(cmd, "token-x")
	if err != nil {
		return err
	}
	tokenY, err := a.lookup(cmd, "token-y")
	if err != nil {
		return err
	}
	mintX, err := tokenX.Mint()
	if err != nil {
		return err
	}
	mintY, err := tokenY.Mint()
	if err != nil {
		return err
	}

	amountX, _ := cmd.Flags().GetUint64("amount-x")
	amountY, _ := cmd.Flags().GetUint64("amount-y")

	addFlow := flow.NewAddLiquidityFlow(
		a.executor(hydramath.FixedQuote{}),
		a.viewProvider(mintX, mintY),
		a.log.Logger,
	)
	addFlow.TokenX = flow.TokenField{Asset: *tokenX, Amount: amountX}
	addFlow.TokenY = flow.TokenField{Asset: *tokenY, Amount: amountY}
	addFlow.SlippageBps = a.slippage(cmd)

	if err := driveFlow(ctx, addFlow); err != nil {
		return err
	}

	fmt.Printf("add-liquidity submitted: %s\n", addFlow.Signature)
	return nil
}

func runRemoveLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext()
	defer stop()

	tokenX, err := a.lookup(cmd, "token-x")
	if err != nil {
		return err
	}
	tokenY, err := a.lookup(cmd, "token-y")
	if err != nil {
		return err
	}
	mintX, err := tokenX.Mint()
	if err != nil {
		return err
	}
	mintY, err := tokenY.Mint()
	if err != nil {
		return err
	}

	percentBps, _ := cmd.Flags().GetUint64("percent-bps")

	removeFlow := flow.NewRemoveLiquidityFlow(
		a.executor(hydramath.FixedQuote{}),
		a.viewProvider(mintX, mintY),
		a.log.Logger,
	)
	removeFlow.PercentBps = percentBps

	if err := driveFlow(ctx, removeFlow); err != nil {
		return err
	}

	fmt.Printf("remove-liquidity submitted: %s\n", removeFlow.Signature)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx, stop := signalContext()
	defer stop()

	tokenX, err := a.lookup(cmd, "token-x")
	if err != nil {
		return err
	}
	tokenY, err := a.lookup(cmd, "token-y")
	if err != nil {
		return err
	}
	mintX, err := tokenX.Mint()
	if err != nil {
		return err
	}
	mintY, err := tokenY.Mint()
	if err != nil {
		return err
	}

	views, err := a.composer.Watch(ctx, mintX, mintY)
	if err != nil {
		return err
	}

	for {
		select {
		case view, ok := <-views:
			if !ok {
				return nil
			}
			printView(view)
		case <-ctx.Done():
			return nil
		}
	}
}

func printView(v pool.PoolView) {
	line := fmt.Sprintf("pool %s/%s initialized=%t", v.TokenXMint, v.TokenYMint, v.IsInitialized)
	if v.TokenXVault != nil && v.TokenYVault != nil {
		line += fmt.Sprintf(" vaultX=%d vaultY=%d", v.TokenXVault.Data.Amount, v.TokenYVault.Data.Amount)
	}
	if v.LpMint != nil {
		line += fmt.Sprintf(" lpSupply=%d", v.LpMint.Data.Supply)
	}
	fmt.Println(line)
}
