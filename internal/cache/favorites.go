package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

func favoritesKey(userID string) string {
	return "favorites:" + userID
}

// ToggleFavorite flips offerID in userID's favorites and returns the new state.
func (c *RedisCache) ToggleFavorite(ctx context.Context, userID, offerID string) (bool, error) {
	key := favoritesKey(userID)

	var on bool
	err := c.watch(ctx, func(tx *redis.Tx) error {
		member, err := tx.SIsMember(ctx, key, offerID).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if member {
				pipe.SRem(ctx, key, offerID)
			} else {
				pipe.SAdd(ctx, key, offerID)
			}
			return nil
		})
		on = !member
		return err
	}, key)
	return on, err
}

func (c *RedisCache) Favorites(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := c.client.SMembers(ctx, favoritesKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	favorites := make(map[string]bool, len(ids))
	for _, id := range ids {
		favorites[id] = true
	}
	return favorites, nil
}
