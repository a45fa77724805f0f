package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

func sweetBSON(id primitive.ObjectID, name string, qty int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "category", Value: "chocolate"},
		{Key: "price", Value: 2.5},
		{Key: "quantity", Value: qty},
		{Key: "created_at", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "updated_at", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestSearchFilter(t *testing.T) {
	minP, maxP := 1.0, 5.0
	f := searchFilter(ports.SweetFilter{Name: "dark", Category: domain.CategoryChocolate, MinPrice: &minP, MaxPrice: &maxP})

	assert.Equal(t, primitive.Regex{Pattern: "dark", Options: "i"}, f["name"])
	assert.Equal(t, "chocolate", f["category"])
	assert.Equal(t, bson.M{"$gte": 1.0, "$lte": 5.0}, f["price"])

	assert.Empty(t, searchFilter(ports.SweetFilter{}))
}

func TestPatchSet_OnlySuppliedFields(t *testing.T) {
	price := 3.0
	at := time.Now()
	set := patchSet(domain.SweetPatch{Price: &price}, at)

	assert.Equal(t, bson.M{"price": 3.0, "updated_at": at}, set)
}

func TestSweetRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "test." + collectionSweets

	mt.Run("create sets id", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := &domain.Sweet{Name: "Dark Chocolate", Category: domain.CategoryChocolate, Price: 2.5, Quantity: 50}
		require.NoError(t, repo.Create(context.Background(), s))
		assert.Len(t, s.ID, 24)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, sweetBSON(id, "Dark Chocolate", 50)))

		got, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(t, err)
		assert.Equal(t, id.Hex(), got.ID)
		assert.Equal(t, 50, got.Quantity)
		assert.Equal(t, domain.CategoryChocolate, got.Category)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrSweetNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}

		_, err := repo.FindByID(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			sweetBSON(primitive.NewObjectID(), "Fudge", 3),
			sweetBSON(primitive.NewObjectID(), "Toffee", 7),
		)
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)

		got, err := repo.List(context.Background(), ports.SweetFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Fudge", got[0].Name)
	})

	mt.Run("decrement stock", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: sweetBSON(id, "Dark Chocolate", 40)},
		})

		got, err := repo.DecrementStock(context.Background(), id.Hex(), 10, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 40, got.Quantity)
	})

	mt.Run("decrement stock insufficient", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: id}}),
		)

		_, err := repo.DecrementStock(context.Background(), id.Hex(), 60, time.Now())
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	mt.Run("decrement stock missing sweet", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := repo.DecrementStock(context.Background(), primitive.NewObjectID().Hex(), 1, time.Now())
		assert.ErrorIs(t, err, domain.ErrSweetNotFound)
	})

	mt.Run("increment stock missing sweet", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		_, err := repo.IncrementStock(context.Background(), primitive.NewObjectID().Hex(), 5, time.Now())
		assert.ErrorIs(t, err, domain.ErrSweetNotFound)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := &SweetRepository{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrSweetNotFound)
	})
}
