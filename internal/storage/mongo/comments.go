package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/storage"
)

// commentDoc — документ коллекции comments.
type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PostID     string             `bson:"post_id"`
	ParentID   string             `bson:"parent_id"`
	AuthorID   string             `bson:"author_id"`
	AuthorName string             `bson:"author_name"`
	AuthorRole string             `bson:"author_role"`
	Content    string             `bson:"content"`
	IsEdited   bool               `bson:"is_edited"`
	Reactions  map[string]string  `bson:"reactions,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d commentDoc) record() *models.CommentRecord {
	var reactions map[string]models.ReactionKind
	if len(d.Reactions) > 0 {
		reactions = make(map[string]models.ReactionKind, len(d.Reactions))
		for uid, k := range d.Reactions {
			reactions[uid] = models.ReactionKind(k)
		}
	}

	return &models.CommentRecord{
		ID:         d.ID.Hex(),
		PostID:     d.PostID,
		ParentID:   d.ParentID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		AuthorRole: d.AuthorRole,
		Content:    d.Content,
		IsEdited:   d.IsEdited,
		Reactions:  reactions,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// objectID: некорректный формат id трактуется как «нет такой записи».
func objectID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return oid, nil
}

// CreateComment вставляет документ; ID генерирует драйвер.
func (m *Mongo) CreateComment(ctx context.Context, rec models.CommentRecord) (*models.CommentRecord, error) {
	const op = "storage/mongo/CreateComment"

	now := toMS(time.Now())
	doc := commentDoc{
		PostID:     rec.PostID,
		ParentID:   rec.ParentID,
		AuthorID:   rec.AuthorID,
		AuthorName: rec.AuthorName,
		AuthorRole: rec.AuthorRole,
		Content:    rec.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid

	return doc.record(), nil
}

// CommentByID возвращает комментарий по идентификатору.
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.CommentRecord, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.record(), nil
}

// ListByPost возвращает все комментарии поста в порядке вставки.
func (m *Mongo) ListByPost(ctx context.Context, postID string) ([]models.CommentRecord, error) {
	const op = "storage/mongo/ListByPost"

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := m.comments.Find(ctx, bson.D{{Key: "post_id", Value: strings.TrimSpace(postID)}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	items := []models.CommentRecord{}
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, *doc.record())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}

// UpdateContent меняет текст и помечает комментарий отредактированным.
func (m *Mongo) UpdateContent(ctx context.Context, id, content string, at time.Time) (*models.CommentRecord, error) {
	const op = "storage/mongo/UpdateContent"

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "is_edited", Value: true},
		{Key: "updated_at", Value: toMS(at)},
	}}}

	return m.findOneAndUpdate(ctx, op, oid, update)
}

// DeleteComment удаляет комментарий, затем его ответы.
func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteComment"

	oid, err := objectID(op, id)
	if err != nil {
		return err
	}

	res, err := m.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := m.comments.DeleteMany(ctx, bson.D{{Key: "parent_id", Value: oid.Hex()}}); err != nil {
		return fmt.Errorf("%s: delete replies: %w", op, err)
	}

	return nil
}

// ToggleReaction переключает реакцию одним update-пайплайном:
// reactions.<uid> = (reactions.<uid> == kind) ? $$REMOVE : kind.
func (m *Mongo) ToggleReaction(ctx context.Context, id, userID string, kind models.ReactionKind) (*models.CommentRecord, error) {
	const op = "storage/mongo/ToggleReaction"

	if !validKey(userID) {
		return nil, fmt.Errorf("%s: user id %q: %w", op, userID, storage.ErrInvalidID)
	}

	oid, err := objectID(op, id)
	if err != nil {
		return nil, err
	}

	field := "reactions." + userID
	pipeline := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$" + field, string(kind)}}},
				"$$REMOVE",
				string(kind),
			}}}},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
	}

	return m.findOneAndUpdate(ctx, op, oid, pipeline)
}

func (m *Mongo) findOneAndUpdate(ctx context.Context, op string, oid primitive.ObjectID, update any) (*models.CommentRecord, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc commentDoc
	err := m.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.record(), nil
}

// validKey — id пользователя пригоден как имя поля документа.
func validKey(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".$\x00")
}
