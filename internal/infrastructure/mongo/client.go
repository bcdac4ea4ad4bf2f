// Package mongo implementa el almacén de comprobantes sobre MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/Vouchers-api/pkg/config"
)

const (
	vouchersCollection = "expense_vouchers"
	countersCollection = "counters"

	defaultServerSelectionTimeout = 5 * time.Second
)

var (
	ErrEmptyURI          = errors.New("mongo uri vacío")
	ErrEmptyDatabaseName = errors.New("nombre de base de datos mongo vacío")
)

// Connect abre el cliente, verifica con ping y devuelve la base configurada.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, nil, ErrEmptyURI
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, nil, ErrEmptyDatabaseName
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(defaultServerSelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes crea los índices del listado y la unicidad del número visible.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "voucher_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_voucher_number"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "voucher_number", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("idx_status")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("idx_category")},
		{Keys: bson.D{{Key: "voucher_date", Value: 1}}, Options: options.Index().SetName("idx_voucher_date")},
	}
	if _, err := db.Collection(vouchersCollection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("crear índices: %w", err)
	}
	return nil
}
