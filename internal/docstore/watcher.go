package docstore

import (
	"context"
	"sync"
	"time"

	"hotspot/internal/domain"
	"hotspot/internal/events"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
)

// Publisher receives the events the watcher derives from snapshots.
type Publisher interface {
	Publish(events.Event)
}

type decoder func(snap *firestore.DocumentSnapshot) (interface{}, error)

func decoderFor[T any](setID func(*T, string)) decoder {
	return func(snap *firestore.DocumentSnapshot) (interface{}, error) {
		return decode(snap, setID)
	}
}

// watched are the collections whose writes fire triggers.
var watched = map[string]decoder{
	domain.CollectionPayments:  decoderFor(setPaymentID),
	domain.CollectionTickets:   decoderFor(setTicketID),
	domain.CollectionPosts:     decoderFor(setPostID),
	domain.CollectionReferrals: decoderFor(setReferralID),
}

// Watcher turns Firestore snapshot listeners into bus events, covering
// documents written by clients that bypass the HTTP API.
type Watcher struct {
	client  *firestore.Client
	pub     Publisher
	log     *zap.Logger
	backoff time.Duration
}

func NewWatcher(client *firestore.Client, pub Publisher, log *zap.Logger) *Watcher {
	return &Watcher{client: client, pub: pub, log: log.Named("watcher"), backoff: 2 * time.Second}
}

// Run listens on every watched collection until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for name, dec := range watched {
		wg.Add(1)
		go func(name string, dec decoder) {
			defer wg.Done()
			w.listen(ctx, name, dec)
		}(name, dec)
	}
	wg.Wait()
}

func (w *Watcher) listen(ctx context.Context, collection string, dec decoder) {
	state := newTracker(collection)
	log := w.log.With(zap.String("collection", collection))
	for {
		it := w.client.Collection(collection).Snapshots(ctx)
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("snapshot listener failed, restarting", zap.Error(err))
				}
				break
			}
			for _, ch := range qs.Changes {
				c, err := toChange(ch, dec)
				if err != nil {
					log.Error("skip undecodable document", zap.String("doc_id", ch.Doc.Ref.ID), zap.Error(err))
					continue
				}
				if e, ok := state.apply(c); ok {
					w.pub.Publish(e)
				}
			}
			state.seeded = true
		}
		it.Stop()
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.backoff):
		}
	}
}

func toChange(ch firestore.DocumentChange, dec decoder) (change, error) {
	c := change{id: ch.Doc.Ref.ID, version: ch.Doc.UpdateTime}
	switch ch.Kind {
	case firestore.DocumentRemoved:
		c.kind = changeRemoved
		return c, nil
	case firestore.DocumentModified:
		c.kind = changeModified
	default:
		c.kind = changeAdded
	}
	doc, err := dec(ch.Doc)
	if err != nil {
		return change{}, err
	}
	c.doc = doc
	return c, nil
}

type changeKind int

const (
	changeAdded changeKind = iota
	changeModified
	changeRemoved
)

type change struct {
	kind    changeKind
	id      string
	version time.Time
	doc     interface{}
}

type cached struct {
	version time.Time
	doc     interface{}
}

// tracker remembers the last seen state of each document so updates carry
// their previous value. It survives listener restarts: a restarted listener
// replays every document as added, and only those that are new or changed
// since the last snapshot produce events.
type tracker struct {
	collection string
	docs       map[string]cached
	// seeded is false until the first snapshot has been absorbed; that
	// snapshot describes pre-existing data and fires nothing.
	seeded bool
}

func newTracker(collection string) *tracker {
	return &tracker{collection: collection, docs: map[string]cached{}}
}

func (t *tracker) apply(c change) (events.Event, bool) {
	prev, known := t.docs[c.id]
	if c.kind == changeRemoved {
		delete(t.docs, c.id)
		return events.Event{}, false
	}
	t.docs[c.id] = cached{version: c.version, doc: c.doc}
	if !t.seeded {
		return events.Event{}, false
	}
	e := events.Event{
		Collection: t.collection,
		DocID:      c.id,
		Version:    c.version.UTC().Format(time.RFC3339Nano),
		After:      c.doc,
	}
	switch {
	case !known && c.kind == changeModified:
		e.Kind = events.Updated
	case !known:
		e.Kind = events.Created
	case prev.version.Equal(c.version):
		return events.Event{}, false
	default:
		e.Kind = events.Updated
		e.Before = prev.doc
	}
	return e, true
}
