package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const collectionSweets = "sweets"

type SweetRepository struct {
	col *mongo.Collection
}

func NewSweetRepository(db *mongo.Database) *SweetRepository {
	return &SweetRepository{col: db.Collection(collectionSweets)}
}

type sweetDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Description string             `bson:"description,omitempty"`
	ImageURL    string             `bson:"image_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *sweetDoc) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    domain.Category(d.Category),
		Price:       d.Price,
		Quantity:    d.Quantity,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a new sweet document and sets s.ID.
func (r *SweetRepository) Create(ctx context.Context, s *domain.Sweet) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sweetDoc{
		ID:          primitive.NewObjectID(),
		Name:        s.Name,
		Category:    string(s.Category),
		Price:       s.Price,
		Quantity:    s.Quantity,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert sweet: %w", err)
	}
	s.ID = doc.ID.Hex()
	return nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sweetDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSweetNotFound
		}
		return nil, fmt.Errorf("find sweet: %w", err)
	}
	return doc.toDomain(), nil
}

// searchFilter translates f into a MongoDB query. Criteria are combined with AND.
func searchFilter(f ports.SweetFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: f.Name, Options: "i"}
	}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

func (r *SweetRepository) List(ctx context.Context, f ports.SweetFilter) ([]*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, searchFilter(f), options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []sweetDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sweets: %w", err)
	}

	out := make([]*domain.Sweet, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// patchSet builds the $set document for the supplied fields of p.
func patchSet(p domain.SweetPatch, at time.Time) bson.M {
	set := bson.M{"updated_at": at}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.Quantity != nil {
		set["quantity"] = *p.Quantity
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ImageURL != nil {
		set["image_url"] = *p.ImageURL
	}
	return set
}

func (r *SweetRepository) Update(ctx context.Context, id string, p domain.SweetPatch, at time.Time) (*domain.Sweet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patchSet(p, at)}, domain.ErrSweetNotFound)
}

func (r *SweetRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSweetNotFound
	}
	return nil
}

// DecrementStock subtracts qty in a single conditional update so concurrent
// purchases can never drive the quantity below zero.
func (r *SweetRepository) DecrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Sweet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "quantity": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updated_at": at},
	}
	sweet, err := r.findOneAndUpdate(ctx, filter, update, domain.ErrInsufficientStock)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		return sweet, err
	}

	// No match: either the sweet is gone or there is not enough stock.
	if exists, probeErr := r.exists(ctx, oid); probeErr != nil {
		return nil, probeErr
	} else if !exists {
		return nil, domain.ErrSweetNotFound
	}
	return nil, domain.ErrInsufficientStock
}

func (r *SweetRepository) IncrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Sweet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$inc": bson.M{"quantity": qty},
		"$set": bson.M{"updated_at": at},
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, update, domain.ErrSweetNotFound)
}

func (r *SweetRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, noMatch error) (*domain.Sweet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc sweetDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, noMatch
		}
		return nil, fmt.Errorf("update sweet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SweetRepository) exists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.col.FindOne(ctx, bson.M{"_id": oid}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe sweet: %w", err)
	}
	return true, nil
}

// EnsureIndexes creates the indexes used by listing and search.
func (r *SweetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
