// Package redis — кэш дерева комментариев поста поверх основного хранилища.
//
// ListByPost читается из Redis и при промахе заполняется из next. Ключи:
//
//	comments:post:<id>:gen     — поколение поста, INCR на каждую запись (без TTL);
//	comments:post:<id>:v<gen>  — JSON списка для поколения, с TTL.
//
// Заполнение пишет под поколение, прочитанное до похода в next. Если запись
// успела сменить поколение, заполненный ключ уже никто не читает.
// Ошибки Redis не ломают запросы: они логируются, и вызов идёт в next.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/bragboard/internal/config"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/storage"
	"github.com/pribylovaa/bragboard/pkg/log"
)

const keyPrefix = "comments:post:"

// Cache — storage.Storage с кэшированием ListByPost.
type Cache struct {
	next storage.Storage
	rdb  *redis.Client
	ttl  time.Duration
}

var _ storage.Storage = (*Cache)(nil)

// Connect создаёт клиента Redis по конфигурации и проверяет соединение.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// New оборачивает next кэшем.
func New(next storage.Storage, rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl}
}

func genKey(postID string) string { return keyPrefix + postID + ":gen" }

func dataKey(postID string, gen int64) string {
	return keyPrefix + postID + ":v" + strconv.FormatInt(gen, 10)
}

// generation — текущее поколение поста; отсутствующий счётчик — поколение 0.
func (c *Cache) generation(ctx context.Context, postID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return gen, err
}

func (c *Cache) ListByPost(ctx context.Context, postID string) ([]models.CommentRecord, error) {
	const op = "storage/redis/ListByPost"

	lg := log.From(ctx).With("op", op, "post_id", postID)

	gen, err := c.generation(ctx, postID)
	if err != nil {
		lg.Warn("cache_get_failed", "err", err)
		return c.next.ListByPost(ctx, postID)
	}

	k := dataKey(postID, gen)
	lg = lg.With("generation", gen)

	raw, err := c.rdb.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var items []models.CommentRecord
		uerr := json.Unmarshal(raw, &items)
		if uerr == nil {
			lg.Debug("cache_hit")
			return items, nil
		}
		lg.Warn("cache_decode_failed", "err", uerr)
	case errors.Is(err, redis.Nil):
		lg.Debug("cache_miss")
	default:
		lg.Warn("cache_get_failed", "err", err)
	}

	items, err := c.next.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(items); err == nil {
		if err := c.rdb.Set(ctx, k, b, c.ttl).Err(); err != nil {
			lg.Warn("cache_set_failed", "err", err)
		}
	}

	return items, nil
}

func (c *Cache) CreateComment(ctx context.Context, rec models.CommentRecord) (*models.CommentRecord, error) {
	out, err := c.next.CreateComment(ctx, rec)
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx, out.PostID)

	return out, nil
}

func (c *Cache) CommentByID(ctx context.Context, id string) (*models.CommentRecord, error) {
	return c.next.CommentByID(ctx, id)
}

func (c *Cache) UpdateContent(ctx context.Context, id, content string, at time.Time) (*models.CommentRecord, error) {
	out, err := c.next.UpdateContent(ctx, id, content, at)
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx, out.PostID)

	return out, nil
}

// DeleteComment узнаёт пост комментария до удаления, чтобы сменить его поколение.
func (c *Cache) DeleteComment(ctx context.Context, id string) error {
	rec, err := c.next.CommentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.next.DeleteComment(ctx, id); err != nil {
		return err
	}

	c.invalidate(ctx, rec.PostID)

	return nil
}

func (c *Cache) ToggleReaction(ctx context.Context, id, userID string, kind models.ReactionKind) (*models.CommentRecord, error) {
	out, err := c.next.ToggleReaction(ctx, id, userID, kind)
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx, out.PostID)

	return out, nil
}

// Close закрывает клиента Redis и основное хранилище.
func (c *Cache) Close(ctx context.Context) error {
	rerr := c.rdb.Close()
	nerr := c.next.Close(ctx)

	return errors.Join(rerr, nerr)
}

// invalidate переводит пост на новое поколение; ключ прежнего истечёт по TTL.
func (c *Cache) invalidate(ctx context.Context, postID string) {
	if err := c.rdb.Incr(ctx, genKey(postID)).Err(); err != nil {
		log.From(ctx).Warn("cache_invalidate_failed", "op", "storage/redis/invalidate", "post_id", postID, "err", err)
	}
}
