package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection         = "users"
	projectsCollection      = "projects"
	tasksCollection         = "tasks"
	notificationsCollection = "notifications"
	activityCollection      = "activitylogs"

	opTimeout = 5 * time.Second

	// mongo "NamespaceExists" command error
	codeNamespaceExists = 48
)

type Mongo struct {
	cli    *mongo.Client
	db     *mongo.Database
	logger *log.Logger
}

func ConnectToMongo(ctx context.Context, uri, database string, logger *log.Logger) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("MONGO_URI is not set")
	}
	clientOptions := options.Client().ApplyURI(uri)

	var client *mongo.Client
	var err error
	for i := 0; i < 5; i++ {
		logger.Printf("Attempting to connect to MongoDB, try %d...", i+1)
		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
			err = client.Ping(pingCtx, readpref.Primary())
			cancel()
		}
		if err == nil {
			break
		}
		logger.Printf("Attempt %d: failed to connect to MongoDB: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	logger.Println("Successfully connected to MongoDB")

	return &Mongo{cli: client, db: client.Database(database), logger: logger}, nil
}

func (m *Mongo) DisconnectMongo(ctx context.Context) error {
	return m.cli.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return m.cli.Ping(ctx, readpref.Primary())
}

// Store returns the Mongo-backed repositories.
func (m *Mongo) Store() store.Store {
	return store.Store{
		Users:         &UserRepo{col: m.db.Collection(usersCollection)},
		Projects:      &ProjectRepo{col: m.db.Collection(projectsCollection)},
		Tasks:         &TaskRepo{col: m.db.Collection(tasksCollection)},
		Notifications: &NotificationRepo{col: m.db.Collection(notificationsCollection)},
		Activity:      &ActivityRepo{col: m.db.Collection(activityCollection)},
		Ping:          m.Ping,
	}
}

// EnsureSchema installs the activity validator and the indexes the queries rely on.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	if err := m.ensureValidator(ctx, activityCollection, activitySchema()); err != nil {
		return err
	}
	if err := m.ensureValidator(ctx, notificationsCollection, notificationSchema()); err != nil {
		return err
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "company", Value: 1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "assignee", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "creator", Value: 1}}},
			{Keys: bson.D{{Key: "project", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		activityCollection: {
			{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "action", Value: 1}}},
			{Keys: bson.D{{Key: "entityType", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		_, err := m.db.Collection(name).Indexes().CreateMany(ctx, idx)
		cancel()
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	m.logger.Println("Indexes and validators are in place")
	return nil
}

func (m *Mongo) ensureValidator(ctx context.Context, name string, schema bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	validator := bson.M{"$jsonSchema": schema}
	err := m.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != codeNamespaceExists {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	res := m.db.RunCommand(ctx, bson.D{{Key: "collMod", Value: name}, {Key: "validator", Value: validator}})
	if err := res.Err(); err != nil {
		return fmt.Errorf("update validator on %s: %w", name, err)
	}
	return nil
}

func activitySchema() bson.M {
	actions := make([]string, 0, len(models.AllActions))
	for _, a := range models.AllActions {
		actions = append(actions, string(a))
	}
	return bson.M{
		"bsonType": "object",
		"required": []string{"actor", "action", "description", "createdAt"},
		"properties": bson.M{
			"actor":       bson.M{"bsonType": "objectId"},
			"action":      bson.M{"enum": actions},
			"description": bson.M{"bsonType": "string"},
			"createdAt":   bson.M{"bsonType": "date"},
		},
	}
}

func notificationSchema() bson.M {
	types := make([]string, 0, len(models.AllNotificationTypes))
	for _, t := range models.AllNotificationTypes {
		types = append(types, string(t))
	}
	return bson.M{
		"bsonType": "object",
		"required": []string{"recipient", "sender", "type", "title", "message", "isRead", "createdAt"},
		"properties": bson.M{
			"recipient": bson.M{"bsonType": "objectId"},
			"sender":    bson.M{"bsonType": "objectId"},
			"type":      bson.M{"enum": types},
			"isRead":    bson.M{"bsonType": "bool"},
		},
	}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
