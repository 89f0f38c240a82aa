package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avelin/todoweb/internal/models"
)

// ErrNoTodo is returned when an id does not match any stored record.
var ErrNoTodo = errors.New("todo not found")

// TodoRepository defines the store operations the handlers need.
type TodoRepository interface {
	FindAll(ctx context.Context) ([]*models.Todo, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error)
	Insert(ctx context.Context, todo *models.Todo) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, todo *models.Todo) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error)
}

// MongoRepository stores todos in a Mongo collection. It connects through
// the gateway on every call, which is a no-op once the client is cached.
type MongoRepository struct {
	gw   *Gateway
	name string
}

func NewMongoRepository(gw *Gateway, collection string) *MongoRepository {
	return &MongoRepository{gw: gw, name: collection}
}

func (r *MongoRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	database, err := r.gw.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(r.name), nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]*models.Todo, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var todos []*models.Todo
	if err := cur.All(ctx, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{}
	err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(todo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTodo
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *MongoRepository) Insert(ctx context.Context, todo *models.Todo) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, todo)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		todo.ID = oid
	}
	return nil
}

func (r *MongoRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, todo *models.Todo) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, todo)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoTodo
	}
	return nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*models.Todo, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{}
	err = coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(todo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTodo
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}
