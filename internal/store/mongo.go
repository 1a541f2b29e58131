// Package store implements club.Store on MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkarpin/clubsite/internal/club"
)

// Collection names.
const (
	colNews     = "news"
	colEvents   = "events"
	colHomework = "homework"
	colSettings = "settings"
)

// Mongo is the MongoDB-backed document store.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// setting is the settings collection document shape. Settings are keyed
// blobs, one document per key.
type setting struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Connect opens a MongoDB connection, verifies it with a ping, and returns
// the store.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Mongo{
		client: client,
		db:     client.Database(database),
	}, nil
}

// EnsureIndexes creates the indexes the list queries rely on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	type colIndex struct {
		col  string
		keys bson.D
	}
	indexes := []colIndex{
		{colNews, bson.D{{Key: "created_at", Value: -1}}},
		{colEvents, bson.D{{Key: "date", Value: 1}}},
		{colHomework, bson.D{{Key: "uploaded_at", Value: -1}}},
	}
	for _, idx := range indexes {
		_, err := m.db.Collection(idx.col).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.keys})
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.col, err)
		}
	}
	return nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) ListNews(ctx context.Context) ([]club.NewsPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.db.Collection(colNews).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []club.NewsPost{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	return posts, nil
}

func (m *Mongo) CreateNews(ctx context.Context, post club.NewsPost) error {
	if _, err := m.db.Collection(colNews).InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert news post: %w", err)
	}
	return nil
}

func (m *Mongo) DeleteNews(ctx context.Context, id string) error {
	return m.deleteByID(ctx, colNews, id)
}

func (m *Mongo) ListEvents(ctx context.Context) ([]club.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := m.db.Collection(colEvents).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []club.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (m *Mongo) CreateEvent(ctx context.Context, event club.Event) error {
	if _, err := m.db.Collection(colEvents).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (m *Mongo) DeleteEvent(ctx context.Context, id string) error {
	return m.deleteByID(ctx, colEvents, id)
}

func (m *Mongo) ListHomework(ctx context.Context) ([]club.HomeworkImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := m.db.Collection(colHomework).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list homework: %w", err)
	}
	defer cursor.Close(ctx)

	images := []club.HomeworkImage{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("decode homework: %w", err)
	}
	return images, nil
}

func (m *Mongo) GetHomework(ctx context.Context, id string) (club.HomeworkImage, error) {
	var img club.HomeworkImage
	err := m.db.Collection(colHomework).FindOne(ctx, bson.M{"_id": id}).Decode(&img)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return club.HomeworkImage{}, club.ErrNotFound
	}
	if err != nil {
		return club.HomeworkImage{}, fmt.Errorf("find homework %s: %w", id, err)
	}
	return img, nil
}

func (m *Mongo) CreateHomework(ctx context.Context, img club.HomeworkImage) error {
	if _, err := m.db.Collection(colHomework).InsertOne(ctx, img); err != nil {
		return fmt.Errorf("insert homework image: %w", err)
	}
	return nil
}

func (m *Mongo) DeleteHomework(ctx context.Context, id string) error {
	return m.deleteByID(ctx, colHomework, id)
}

func (m *Mongo) GetSetting(ctx context.Context, key string) (string, error) {
	var doc setting
	err := m.db.Collection(colSettings).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Unset settings read as empty, not as an error.
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find setting %s: %w", key, err)
	}
	return doc.Value, nil
}

func (m *Mongo) SetSetting(ctx context.Context, key, value string) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.db.Collection(colSettings).ReplaceOne(ctx, bson.M{"_id": key}, setting{Key: key, Value: value}, opts)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// deleteByID removes one document by _id, mapping a zero delete count to
// club.ErrNotFound.
func (m *Mongo) deleteByID(ctx context.Context, col, id string) error {
	res, err := m.db.Collection(col).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", col, err)
	}
	if res.DeletedCount == 0 {
		return club.ErrNotFound
	}
	return nil
}
