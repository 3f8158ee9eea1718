package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/wallet-sync/infra/cloudrun"
	"github.com/GregMSThompson/wallet-sync/infra/docker"
	"github.com/GregMSThompson/wallet-sync/infra/firestore"
	"github.com/GregMSThompson/wallet-sync/infra/identity"
	"github.com/GregMSThompson/wallet-sync/infra/kms"
	"github.com/GregMSThompson/wallet-sync/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// firestore database plus the transaction listing indexes
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		// key sealing the bank application keys stored on wallets
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyID, err := kms.CreateKey(ctx, prov, "wallet-sync", "bank-credentials")
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, keyID, ident, db, repo, kmsSvc)
		if err != nil {
			return err
		}

		ctx.Export("kmsKeyName", keyID)
		return nil
	})
}
