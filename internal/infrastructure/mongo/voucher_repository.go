package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Vouchers-api/internal/domain"
	"github.com/jhoicas/Vouchers-api/internal/domain/entity"
	"github.com/jhoicas/Vouchers-api/internal/domain/repository"
	"github.com/jhoicas/Vouchers-api/internal/domain/voucher"
)

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo almacén documental. Cada comprobante es un documento; la transición es
// un UpdateOne filtrado por estado y versión.
type VoucherRepo struct {
	vouchers *mongo.Collection
	counters *mongo.Collection
}

// NewVoucherRepository construye el adaptador sobre la base indicada.
func NewVoucherRepository(db *mongo.Database) *VoucherRepo {
	return &VoucherRepo{
		vouchers: db.Collection(vouchersCollection),
		counters: db.Collection(countersCollection),
	}
}

func (r *VoucherRepo) Create(ctx context.Context, v *entity.Voucher) error {
	if err := voucher.Validate(v); err != nil {
		return err
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	seq, err := r.nextSequence(ctx)
	if err != nil {
		return domain.Unavailable("voucher sequence", err)
	}

	created := *v
	created.ID = uuid.New().String()
	created.VoucherNumber = voucher.FormatNumber(created.CreatedAt.UTC(), seq)
	created.Version = 1
	created.UpdatedAt = created.CreatedAt

	doc, err := toDocument(&created)
	if err != nil {
		return err
	}
	if _, err := r.vouchers.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert voucher: %w", domain.ErrConflict)
		}
		return domain.Unavailable("insert voucher", err)
	}
	*v = created
	return nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	var doc voucherDocument
	err := r.vouchers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Unavailable("get voucher", err)
	}
	return doc.toEntity()
}

func (r *VoucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*entity.Voucher, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "voucher_number", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}

	cur, err := r.vouchers.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, domain.Unavailable("list vouchers", err)
	}
	defer cur.Close(ctx)

	list := make([]*entity.Voucher, 0)
	for cur.Next(ctx) {
		var doc voucherDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.Unavailable("decode voucher", err)
		}
		v, err := doc.toEntity()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.Unavailable("list vouchers", err)
	}
	return list, nil
}

// statusSet campos que reescribe una transición.
type statusSet struct {
	Status    string          `bson:"status"`
	UpdatedAt time.Time       `bson:"updated_at"`
	Closing   closingDocument `bson:",inline"`
}

func (r *VoucherRepo) UpdateStatus(ctx context.Context, u repository.StatusUpdate) error {
	filter := bson.M{"_id": u.ID, "status": string(u.From), "version": u.ExpectedVersion}
	update := bson.M{
		"$set": statusSet{
			Status:    string(u.To),
			UpdatedAt: u.UpdatedAt.UTC(),
			Closing:   closingDocument(entity.FlattenClosing(u.Closing)),
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.vouchers.UpdateOne(ctx, filter, update)
	if err != nil {
		return domain.Unavailable("update voucher status", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.vouchers.CountDocuments(ctx, bson.M{"_id": u.ID}, options.Count().SetLimit(1))
	if err != nil {
		return domain.Unavailable("check voucher", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *VoucherRepo) nextSequence(ctx context.Context) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "voucher_number"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	return out.Seq, err
}

func listFilter(f repository.VoucherFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = f.From.UTC()
		}
		if f.To != nil {
			rng["$lte"] = f.To.UTC()
		}
		filter["voucher_date"] = rng
	}
	return filter
}
