// Package feed fans out change events to live subscribers (gRPC Watch
// streams, websocket clients) and forwards them to an external broker.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/common"
	"github.com/dmitrijs2005/logitrack/internal/policy"
	"github.com/dmitrijs2005/logitrack/internal/server/session"
)

// Collection names a watched table.
type Collection string

const (
	Containers Collection = "containers"
	Bookings   Collection = "bookings"
	Users      Collection = "users"
	Locations  Collection = "locations"
	Types      Collection = "types"
)

var Collections = []Collection{Containers, Bookings, Users, Locations, Types}

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
	// OpSynced is sent once per watch before any delta.
	OpSynced Op = "synced"
	// OpLagged tells a subscriber that events were dropped and it must resync.
	OpLagged Op = "lagged"
)

type Event struct {
	Collection Collection      `json:"collection"`
	Op         Op              `json:"op"`
	ID         string          `json:"id,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	At         time.Time       `json:"at"`
}

// Key is the broker partition key: "<collection>/<id>".
func (e Event) Key() string {
	return string(e.Collection) + "/" + e.ID
}

// NewEvent builds an event stamped with the caller from ctx. Data is the
// JSON encoding of v, omitted when v is nil.
func NewEvent(ctx context.Context, c Collection, op Op, id string, v any) (Event, error) {
	e := Event{Collection: c, Op: op, ID: id, Actor: session.Actor(ctx), At: time.Now().UTC()}
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return Event{}, err
		}
		e.Data = b
	}
	return e, nil
}

// ParseCollections validates names such as "containers" and returns them
// deduplicated. An empty input selects every collection.
func ParseCollections(names []string) ([]Collection, error) {
	if len(names) == 0 {
		return Collections, nil
	}
	seen := make(map[Collection]struct{}, len(names))
	out := make([]Collection, 0, len(names))
	for _, n := range names {
		c := Collection(n)
		if !knownCollection(c) {
			return nil, &UnknownCollectionError{Name: n}
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func knownCollection(c Collection) bool {
	for _, k := range Collections {
		if k == c {
			return true
		}
	}
	return false
}

// Readable resolves the collections role may watch. Watching a collection
// needs the same rule as listing it. Without names, every readable collection
// is selected; an explicitly named collection the role may not list is
// rejected with common.ErrorForbidden.
func Readable(rules *policy.Rules, role policy.Role, names []string) ([]Collection, error) {
	requested, err := ParseCollections(names)
	if err != nil {
		return nil, err
	}

	out := make([]Collection, 0, len(requested))
	for _, c := range requested {
		action, _ := policy.ListAction(string(c))
		err := rules.Police(role, action)
		switch {
		case err == nil:
			out = append(out, c)
		case len(names) > 0:
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: role %q may not watch any collection", common.ErrorForbidden, role)
	}
	return out, nil
}
