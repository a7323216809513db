package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"egov-portal/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Назви колекцій
const (
	CollectionUsers         = "users"
	CollectionDocuments     = "documents"
	CollectionNotifications = "notifications"
)

// Скільки разів повторювати оновлення, якщо документ змінили паралельно
const maxUpdateAttempts = 3

type MongoStore struct {
	userCollection         *mongo.Collection
	documentCollection     *mongo.Collection
	notificationCollection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		userCollection:         db.Collection(CollectionUsers),
		documentCollection:     db.Collection(CollectionDocuments),
		notificationCollection: db.Collection(CollectionNotifications),
	}
}

// Користувачі

func (s *MongoStore) SaveUser(ctx context.Context, user models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	_, err := s.userCollection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := s.userCollection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	cursor, err := s.userCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Документи

func (s *MongoStore) InsertDocument(ctx context.Context, doc models.Document) error {
	if _, err := s.documentCollection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (s *MongoStore) FindDocument(ctx context.Context, id string) (models.Document, error) {
	return s.findDocument(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindDocumentByCode(ctx context.Context, code string) (models.Document, error) {
	if code == "" {
		return models.Document{}, models.ErrDocumentNotFound
	}
	return s.findDocument(ctx, bson.M{"qr_code": code})
}

func (s *MongoStore) findDocument(ctx context.Context, filter bson.M) (models.Document, error) {
	var doc models.Document
	if err := s.documentCollection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Document{}, models.ErrDocumentNotFound
		}
		return models.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	return doc, nil
}

// UpdateDocument читає документ, застосовує fn і замінює його лише якщо
// version не змінилась паралельно; інакше перечитує і повторює fn
func (s *MongoStore) UpdateDocument(ctx context.Context, id string, fn UpdateFunc) (models.Document, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := s.FindDocument(ctx, id)
		if err != nil {
			return models.Document{}, err
		}

		updated := current.Clone()
		if err := fn(&updated); err != nil {
			return models.Document{}, err
		}
		updated.ID = id
		updated.Version = current.Version + 1

		result, err := s.documentCollection.ReplaceOne(ctx, versionFilter(id, current.Version), updated)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return models.Document{}, models.ErrDuplicateEntry
			}
			return models.Document{}, fmt.Errorf("failed to update document: %w", err)
		}
		if result.MatchedCount == 1 {
			return updated, nil
		}
	}

	return models.Document{}, fmt.Errorf("document %s changed concurrently: %w", id, models.ErrInvalidTransition)
}

// Документи, збережені до появи version, не мають поля зовсім
func versionFilter(id string, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "version": bson.M{"$in": bson.A{int64(0), nil}}}
	}
	return bson.M{"_id": id, "version": version}
}

func (s *MongoStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.documentCollection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	query := documentQuery(filter)
	page, limit := NormalizePage(filter.Page, filter.Limit)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit)).
		SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := s.documentCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode documents: %w", err)
	}

	total, err := s.documentCollection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return docs, int(total), nil
}

func (s *MongoStore) AllDocuments(ctx context.Context) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := s.documentCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

func documentQuery(filter models.DocumentFilter) bson.M {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.VerifiedBy != "" {
		query["verified_by"] = filter.VerifiedBy
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	return query
}

// Сповіщення

func (s *MongoStore) InsertNotification(ctx context.Context, n models.Notification) error {
	if _, err := s.notificationCollection.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

func (s *MongoStore) FindNotification(ctx context.Context, id string) (models.Notification, error) {
	var n models.Notification
	if err := s.notificationCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Notification{}, models.ErrNotificationNotFound
		}
		return models.Notification{}, fmt.Errorf("failed to fetch notification: %w", err)
	}
	return n, nil
}

func (s *MongoStore) SetNotificationRead(ctx context.Context, id string, readAt time.Time) error {
	// Фільтр по read=false: повторна позначка не переписує read_at
	result, err := s.notificationCollection.UpdateOne(ctx, bson.M{
		"_id":  id,
		"read": false,
	}, bson.M{
		"$set": bson.M{
			"read":    true,
			"read_at": readAt,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	if result.MatchedCount == 0 {
		if _, err := s.FindNotification(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) MarkAllNotificationsRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	result, err := s.notificationCollection.UpdateMany(ctx, bson.M{
		"user_id": userID,
		"read":    false,
	}, bson.M{
		"$set": bson.M{
			"read":    true,
			"read_at": readAt,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return int(result.ModifiedCount), nil
}

func (s *MongoStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.notificationCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.notificationCollection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"read":    false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return int(count), nil
}
