package firestore

import (
	"fmt"

	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// txIndex is a composite index over users/{uid}/transactions.
type txIndex struct {
	name   string
	fields []string // walletId first, then optional equality fields, date last
	order  string
}

// Indexes behind the transaction listing: wallet + date range, optionally
// filtered by type, in both sort directions.
var txIndexes = []txIndex{
	{name: "txWalletDateAsc", fields: []string{"walletId", "date"}, order: "ASCENDING"},
	{name: "txWalletDateDesc", fields: []string{"walletId", "date"}, order: "DESCENDING"},
	{name: "txWalletTypeDateAsc", fields: []string{"walletId", "type", "date"}, order: "ASCENDING"},
	{name: "txWalletTypeDateDesc", fields: []string{"walletId", "type", "date"}, order: "DESCENDING"},
}

func SetupFirestore(ctx *pulumi.Context, prov *gcp.Provider) (*firestore.Database, error) {
	svc, err := enableFirestore(ctx, prov)
	if err != nil {
		return nil, err
	}

	db, err := createDatabase(ctx, prov, svc)
	if err != nil {
		return nil, err
	}

	if err := createIndexes(ctx, prov, db); err != nil {
		return nil, err
	}
	return db, nil
}

func enableFirestore(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "firestore", &projects.ServiceArgs{
		Service: pulumi.String("firestore.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

func createDatabase(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) (*firestore.Database, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	return firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Name:       pulumi.String("(default)"),
		Project:    pulumi.String(projectID),
		LocationId: pulumi.String(region),
		Type:       pulumi.String("FIRESTORE_NATIVE"),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
}

func createIndexes(ctx *pulumi.Context, prov *gcp.Provider, db *firestore.Database) error {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")

	for _, idx := range txIndexes {
		fields := firestore.IndexFieldArray{}
		for i, f := range idx.fields {
			order := "ASCENDING"
			if i == len(idx.fields)-1 {
				order = idx.order
			}
			fields = append(fields, &firestore.IndexFieldArgs{
				FieldPath: pulumi.String(f),
				Order:     pulumi.String(order),
			})
		}

		_, err := firestore.NewIndex(ctx, idx.name, &firestore.IndexArgs{
			Project:    pulumi.String(projectID),
			Database:   db.Name,
			Collection: pulumi.String("transactions"),
			QueryScope: pulumi.String("COLLECTION"),
			Fields:     fields,
		},
			pulumi.Provider(prov),
			pulumi.DependsOn([]pulumi.Resource{db}),
		)
		if err != nil {
			return fmt.Errorf("firestore index %s: %w", idx.name, err)
		}
	}
	return nil
}
