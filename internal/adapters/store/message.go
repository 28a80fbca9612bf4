package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/terminalboard/server/internal/domain"
)

var ErrNotFound = errors.New("not found")

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Author    string             `bson:"author"`
	Kind      string             `bson:"kind"`
	Text      string             `bson:"text"`
	MediaRef  string             `bson:"media_ref"`
	Room      string             `bson:"room"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d messageDoc) toDomain() domain.Message {
	return domain.Message{
		ID:        d.ID.Hex(),
		Author:    d.Author,
		Kind:      domain.Kind(d.Kind),
		Text:      d.Text,
		MediaRef:  d.MediaRef,
		Room:      domain.RoomName(d.Room),
		CreatedAt: d.CreatedAt,
	}
}

// MessageRepository implements core.MessageStore on a mongo collection.
type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(m *Mongo) *MessageRepository {
	return &MessageRepository{collection: m.collection("messages")}
}

// Create inserts the message and returns it with the server-assigned id
// and timestamp filled in.
func (r *MessageRepository) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := messageDoc{
		Author:    msg.Author,
		Kind:      string(msg.Kind),
		Text:      msg.Text,
		MediaRef:  msg.MediaRef,
		Room:      string(msg.Room),
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}

	msg.CreatedAt = doc.CreatedAt
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return msg, nil
}

// ListRecent returns up to limit messages for a room, newest first. A
// non-zero before narrows the page to messages created earlier than it.
func (r *MessageRepository) ListRecent(ctx context.Context, room domain.RoomName, limit int64, before time.Time) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	filter := bson.M{"room": string(room)}
	if !before.IsZero() {
		filter["created_at"] = bson.M{"$lt": before}
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	for cursor.Next(ctx) {
		var doc messageDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		messages = append(messages, doc.toDomain())
	}
	return messages, cursor.Err()
}

// DeleteByID removes one message (admin surface). ErrNotFound when the id
// is unknown or malformed.
func (r *MessageRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRoom reports how many messages a room has accumulated.
func (r *MessageRepository) CountByRoom(ctx context.Context, room domain.RoomName) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{"room": string(room)})
}
