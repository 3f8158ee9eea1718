package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/GregMSThompson/wallet-sync/internal/bootstrap"
	bbclient "github.com/GregMSThompson/wallet-sync/internal/client/bb"
	"github.com/GregMSThompson/wallet-sync/internal/config"
	"github.com/GregMSThompson/wallet-sync/internal/crypto"
	"github.com/GregMSThompson/wallet-sync/internal/dto"
	"github.com/GregMSThompson/wallet-sync/internal/ledger"
	"github.com/GregMSThompson/wallet-sync/internal/models"
	"github.com/GregMSThompson/wallet-sync/internal/services"
	"github.com/GregMSThompson/wallet-sync/internal/store"
	"github.com/GregMSThompson/wallet-sync/pkg/logger"
)

var (
	uid      string
	walletID string
	link     dto.LinkWalletRequest
	code     int
	debit    bool
)

var rootCmd = &cobra.Command{
	Use:           "wallet-sync",
	Short:         "Operator tooling for Banco do Brasil wallet syncs",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sync one wallet and print the result as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx := logger.ToContext(cmd.Context(), app.bs.Log.With("uid", uid))
		res, err := app.sync.SyncWallet(ctx, uid, walletID)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link a Banco do Brasil account as a new wallet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		link.WalletID = walletID
		link.ApplicationKey = os.Getenv("BBAPPLICATIONKEY")
		link.ClientBasic = os.Getenv("BBCLIENTBASIC")
		link.ClientSecret = os.Getenv("BBCLIENTSECRET")

		ctx := logger.ToContext(cmd.Context(), app.bs.Log.With("uid", uid))
		w, err := app.wallets.LinkBankWallet(ctx, uid, link)
		if err != nil {
			return err
		}
		return printJSON(w)
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show how an extract row would be classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := ledger.LoadEmbedded()
		if err != nil {
			return err
		}
		text := ledger.NormalizeText(args[0])
		isDebit := debit || rules.IsDebit("", "", text, code)
		return printJSON(rules.Classify(text, code, isDebit))
	},
}

type syncRunner interface {
	SyncWallet(ctx context.Context, uid, walletID string) (dto.SyncResult, error)
}

type walletLinker interface {
	LinkBankWallet(ctx context.Context, uid string, req dto.LinkWalletRequest) (*models.Wallet, error)
}

// app is the subset of the API wiring the CLI needs.
type app struct {
	bs      *bootstrap.Bootstrap
	sync    syncRunner
	wallets walletLinker
}

func newApp() (*app, error) {
	cfg := config.New()
	bs, err := bootstrap.Run(cfg, false)
	if err != nil {
		_ = bs.Close()
		return nil, err
	}
	rules, err := ledger.LoadEmbedded()
	if err != nil {
		_ = bs.Close()
		return nil, err
	}

	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	wstore := store.NewWalletStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	sstore := store.NewSecretsStore(bs.SecretManager, cfg.ProjectID)

	resolver := services.NewCredentialResolver(sstore, kmsHelper, cfg.BankEndpoints(), cfg.BBEnvironment, cfg.BBCertDir)
	sserv := services.NewSyncService(wstore, tstore, resolver, rules, cfg.SyncMaxYear, cfg.Location())
	sserv.RegisterBank(services.BankBB, bbclient.NewAdapter(cfg.BBTimeout, cfg.BBPageSize))

	return &app{
		bs:      bs,
		sync:    sserv,
		wallets: services.NewWalletService(wstore, kmsHelper, sstore),
	}, nil
}

func (a *app) close() {
	if err := a.bs.Close(); err != nil {
		a.bs.Log.Warn("closing clients failed", "error", err)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{runCmd, linkCmd} {
		c.Flags().StringVar(&uid, "uid", "", "Owner uid")
		_ = c.MarkFlagRequired("uid")
	}
	runCmd.Flags().StringVar(&walletID, "wallet", "", "Wallet id")
	_ = runCmd.MarkFlagRequired("wallet")

	// Secrets come from BBAPPLICATIONKEY, BBCLIENTBASIC and BBCLIENTSECRET.
	linkCmd.Flags().StringVar(&walletID, "wallet", "", "Wallet id (generated when empty)")
	linkCmd.Flags().StringVar(&link.Name, "name", "", "Wallet name")
	linkCmd.Flags().StringVar(&link.Environment, "env", "", "Bank environment: sandbox or production")
	linkCmd.Flags().StringVar(&link.Agency, "agency", "", "Branch number")
	linkCmd.Flags().StringVar(&link.Account, "account", "", "Account number")
	linkCmd.Flags().StringVar(&link.ClientID, "client-id", "", "OAuth client id, when not using a Basic token")
	linkCmd.Flags().StringVar(&link.CertPath, "cert", "", "Client certificate path")
	linkCmd.Flags().StringVar(&link.KeyPath, "key", "", "Client key path")
	linkCmd.Flags().StringVar(&link.CAPath, "ca", "", "CA bundle path")

	classifyCmd.Flags().IntVar(&code, "code", 0, "Historical code of the row")
	classifyCmd.Flags().BoolVar(&debit, "debit", false, "Treat the row as a debit even without a debit keyword or code")

	rootCmd.AddCommand(runCmd, linkCmd, classifyCmd)
}

func main() {
	_ = gotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
