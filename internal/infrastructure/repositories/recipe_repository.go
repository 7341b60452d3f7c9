package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
	"github.com/ak/flavorfusion/internal/infrastructure/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ratingField      = "rating"
	ratingCountField = "rating_count"
)

type recipeRepository struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewRecipeRepository creates a MongoDB-backed recipe repository
func NewRecipeRepository(db *database.MongoDB) repositories.RecipeRepository {
	return &recipeRepository{
		db:         db,
		collection: db.Collection(database.CollectionRecipes),
	}
}

func (r *recipeRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recipes := []*models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) UpdateRating(ctx context.Context, id int64, rating float64, ratingCount int) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{ratingField: rating, ratingCountField: ratingCount}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrRecipeNotFound
	}
	return nil
}

// Upsert writes every recipe by id, inserting the ones that do not exist yet.
// Rating fields are only set on insert so stored aggregates survive a reseed.
// It returns the number of inserted documents.
func (r *recipeRepository) Upsert(ctx context.Context, recipes []*models.Recipe) (int, error) {
	if len(recipes) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(recipes))
	for _, recipe := range recipes {
		update, err := upsertDocument(recipe)
		if err != nil {
			return 0, err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": recipe.ID}).
			SetUpdate(update).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(result.UpsertedCount), nil
}

// upsertDocument splits a recipe into the fields refreshed on every write and
// the rating fields written only when the document is created.
func upsertDocument(recipe *models.Recipe) (bson.M, error) {
	raw, err := bson.Marshal(recipe)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe %d: %w", recipe.ID, err)
	}
	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe %d: %w", recipe.ID, err)
	}
	delete(fields, "_id")
	delete(fields, ratingField)
	delete(fields, ratingCountField)

	return bson.M{
		"$set": fields,
		"$setOnInsert": bson.M{
			ratingField:      recipe.Rating,
			ratingCountField: recipe.RatingCount,
		},
	}, nil
}

func (r *recipeRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}
