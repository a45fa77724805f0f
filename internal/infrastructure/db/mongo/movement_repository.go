package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kata/sweetshop/internal/core/domain"
)

const collectionMovements = "stock_movements"

// MovementRepository stores the stock movement audit trail.
type MovementRepository struct {
	col *mongo.Collection
}

func NewMovementRepository(db *mongo.Database) *MovementRepository {
	return &MovementRepository{col: db.Collection(collectionMovements)}
}

type movementDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SweetID   string             `bson:"sweet_id"`
	Kind      string             `bson:"kind"`
	Quantity  int                `bson:"quantity"`
	Resulting int                `bson:"resulting_quantity"`
	ActorID   string             `bson:"actor_id,omitempty"`
	At        time.Time          `bson:"at"`
}

// Insert persists a movement to the stock_movements collection.
func (r *MovementRepository) Insert(ctx context.Context, m *domain.StockMovement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := movementDoc{
		SweetID:   m.SweetID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		Resulting: m.Resulting,
		ActorID:   m.ActorID,
		At:        m.At,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepository) ListBySweet(ctx context.Context, sweetID string, limit int) ([]*domain.StockMovement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, bson.M{"sweet_id": sweetID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movementDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movements: %w", err)
	}

	out := make([]*domain.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.StockMovement{
			SweetID:   d.SweetID,
			Kind:      domain.MovementKind(d.Kind),
			Quantity:  d.Quantity,
			Resulting: d.Resulting,
			ActorID:   d.ActorID,
			At:        d.At.UTC(),
		})
	}
	return out, nil
}

func (r *MovementRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sweet_id", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}
