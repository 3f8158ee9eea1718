package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/subosito/gotenv"

	"github.com/GregMSThompson/wallet-sync/internal/bootstrap"
	bbclient "github.com/GregMSThompson/wallet-sync/internal/client/bb"
	"github.com/GregMSThompson/wallet-sync/internal/config"
	"github.com/GregMSThompson/wallet-sync/internal/crypto"
	"github.com/GregMSThompson/wallet-sync/internal/handlers"
	"github.com/GregMSThompson/wallet-sync/internal/ledger"
	"github.com/GregMSThompson/wallet-sync/internal/response"
	"github.com/GregMSThompson/wallet-sync/internal/router"
	"github.com/GregMSThompson/wallet-sync/internal/services"
	"github.com/GregMSThompson/wallet-sync/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// local .env is optional
	_ = gotenv.Load()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg, true)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	rules, err := ledger.LoadEmbedded()
	exitOnError("loading classification rules failed", err, bs.Log)

	// helpers
	kmsHelper := crypto.NewKMS(bs.KMS, cfg.KMSKeyName)

	// stores
	wstore := store.NewWalletStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	sstore := store.NewSecretsStore(bs.SecretManager, cfg.ProjectID)

	// services
	resolver := services.NewCredentialResolver(sstore, kmsHelper, cfg.BankEndpoints(), cfg.BBEnvironment, cfg.BBCertDir)
	wserv := services.NewWalletService(wstore, kmsHelper, sstore)
	sserv := services.NewSyncService(wstore, tstore, resolver, rules, cfg.SyncMaxYear, cfg.Location())
	txserv := services.NewTransactionService(wstore, tstore, cfg.Location())
	sserv.RegisterBank(services.BankBB, bbclient.NewAdapter(cfg.BBTimeout, cfg.BBPageSize))

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.ProjectID = cfg.ProjectID
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.WalletSvc = wserv
	deps.SyncSvc = sserv
	deps.TransactionSvc = txserv

	// router
	r := router.NewRouter(deps)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	bs.Log.Info("server listening", "port", cfg.Port, "bb_environment", cfg.BBEnvironment)
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return
	}
	exitOnError("server start failed", err, bs.Log)
}
