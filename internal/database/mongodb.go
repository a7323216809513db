// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"egov-portal/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	// Налаштування клієнта
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("помилка підключення до MongoDB: %w", err)
	}

	// Перевірка підключення
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("помилка пінгу MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	logrus.WithField("database", cfg.DatabaseName).Info("Успішно підключено до MongoDB")

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

// Ping використовується readiness-перевіркою
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("помилка відключення від MongoDB: %w", err)
	}

	logrus.Info("Відключено від MongoDB")
	return nil
}

// CreateIndexes створює індекси для всіх колекцій
// ВАЖЛИВО: bson.D замість map, щоб зберегти порядок ключів
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("помилка створення індексів для користувачів: %w", err)
	}

	documentCollection := m.Database.Collection("documents")
	documentIndexes := []mongo.IndexModel{
		{
			// Код перевірки унікальний, але є лише у підтверджених
			Keys:    bson.D{{Key: "qr_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			// Заявки громадянина, новіші першими
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "submitted_at", Value: -1},
			},
		},
		{
			// Черга посадовця
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "submitted_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "verified_by", Value: 1}},
		},
	}

	if _, err := documentCollection.Indexes().CreateMany(ctx, documentIndexes); err != nil {
		return fmt.Errorf("помилка створення індексів для документів: %w", err)
	}

	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "read", Value: 1},
			},
		},
	}

	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("помилка створення індексів для сповіщень: %w", err)
	}

	logrus.Info("✅ Індекси успішно створено для всіх колекцій")
	return nil
}
