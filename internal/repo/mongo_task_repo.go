package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "taskmanager/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const tasksCollection = "tasks"

// mongoTask is the stored document. There is no version key.
type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (m mongoTask) toDomain() dom.Task {
	return dom.Task{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		Status:      dom.Status(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MongoTaskRepo implements TaskRepo on a MongoDB collection.
type MongoTaskRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo dials uri, pings the primary and returns a repo on db.tasks.
func ConnectMongo(ctx context.Context, uri, db string) (*MongoTaskRepo, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("taskmanager").
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewMongoTaskRepo(client, client.Database(db)), nil
}

func NewMongoTaskRepo(client *mongo.Client, db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{client: client, coll: db.Collection(tasksCollection)}
}

// EnsureIndexes creates the (status asc, createdAt desc) index used by filtered listing.
func (r *MongoTaskRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_1_createdAt_-1"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return dom.Task{}, fmt.Errorf("mongo insert task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	var doc mongoTask
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return dom.Task{}, mongoErr("find task", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) List(ctx context.Context, q dom.ListQuery) ([]dom.Task, error) {
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: string(q.Sort.Field), Value: dir}, {Key: "_id", Value: dir}}).
		SetProjection(bson.M{"createdAt": 0})

	cur, err := r.coll.Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find tasks: %w", err)
	}
	defer cur.Close(ctx)

	list := make([]dom.Task, 0)
	for cur.Next(ctx) {
		var doc mongoTask
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo decode task: %w", err)
		}
		list = append(list, doc.toDomain())
	}
	return list, cur.Err()
}

func mongoFilter(q dom.ListQuery) bson.M {
	switch len(q.Statuses) {
	case 0:
		return bson.M{}
	case 1:
		return bson.M{"status": string(q.Statuses[0])}
	}
	in := make(bson.A, len(q.Statuses))
	for i, s := range q.Statuses {
		in[i] = string(s)
	}
	return bson.M{"status": bson.M{"$in": in}}
}

func (r *MongoTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"updatedAt":   t.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTask
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		return dom.Task{}, mongoErr("update task", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoTaskRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func mongoErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dom.ErrNotFound
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}
