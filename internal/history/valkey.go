package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	sessionKeyPrefix = "querybuddy:session:"
	sessionTTL       = 24 * time.Hour
	// maxStoredTurns bounds what one session keeps in Valkey. External
	// pruning of old turns is allowed; the in-process view stays
	// append-only within a run.
	maxStoredTurns = 50
)

// ValkeyStore is the optional durable Store backend. Each session is one JSON
// value with a sliding TTL.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore creates a Store backed by the given Valkey client.
func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

func (v *ValkeyStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	key := sessionKeyPrefix + sessionID
	resp := v.client.Do(ctx, v.client.B().Get().Key(key).Build())
	data, err := resp.AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		// A corrupt value is unrecoverable; start the session over.
		return nil, nil
	}
	return turns, nil
}

func (v *ValkeyStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	existing, err := v.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	all := append(existing, turns...)
	if len(all) > maxStoredTurns {
		all = all[len(all)-maxStoredTurns:]
	}

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sessionID, err)
	}
	key := sessionKeyPrefix + sessionID
	resp := v.client.Do(ctx, v.client.B().Set().Key(key).Value(string(data)).Ex(sessionTTL).Build())
	if err := resp.Error(); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}
