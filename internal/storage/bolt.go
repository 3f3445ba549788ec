package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	feedsBucket   = []byte("feeds")
	entriesBucket = []byte("entries")
)

// BoltStore keeps feed records in the feeds bucket and each feed's
// entries in a nested bucket under entries, keyed by feed id.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(dbPath string, timeout time.Duration) (*BoltStore, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{feedsBucket, entriesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) SaveFeed(feed *Feed) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(feed)
		if err != nil {
			return err
		}
		if err := tx.Bucket(feedsBucket).Put([]byte(feed.ID), data); err != nil {
			return err
		}

		eb, err := tx.Bucket(entriesBucket).CreateBucketIfNotExists([]byte(feed.ID))
		if err != nil {
			return err
		}
		for _, entry := range feed.Entries {
			if err := putEntry(eb, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) SaveEntry(feedID string, entry *Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(feedsBucket).Get([]byte(feedID)) == nil {
			return fmt.Errorf("saving entry %s: %w", entry.ID, ErrFeedNotFound)
		}
		eb, err := tx.Bucket(entriesBucket).CreateBucketIfNotExists([]byte(feedID))
		if err != nil {
			return err
		}
		return putEntry(eb, entry)
	})
}

func putEntry(b *bolt.Bucket, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return b.Put([]byte(entry.ID), data)
}

func (s *BoltStore) SaveAll(feeds []*Feed) error {
	return saveAll(s, feeds)
}

func (s *BoltStore) LoadAll() ([]*Feed, error) {
	var feeds []*Feed
	err := s.db.View(func(tx *bolt.Tx) error {
		entries := tx.Bucket(entriesBucket)
		return tx.Bucket(feedsBucket).ForEach(func(k, v []byte) error {
			var feed Feed
			if err := json.Unmarshal(v, &feed); err != nil {
				return fmt.Errorf("decoding feed %s: %w", k, err)
			}
			if eb := entries.Bucket(k); eb != nil {
				err := eb.ForEach(func(ek, ev []byte) error {
					var entry Entry
					if err := json.Unmarshal(ev, &entry); err != nil {
						return fmt.Errorf("decoding entry %s: %w", ek, err)
					}
					feed.Entries = append(feed.Entries, &entry)
					return nil
				})
				if err != nil {
					return err
				}
			}
			SortEntries(feed.Entries)
			feeds = append(feeds, &feed)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	SortFeeds(feeds)
	return feeds, nil
}

func (s *BoltStore) DeleteFeed(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(feedsBucket).Delete([]byte(id)); err != nil {
			return err
		}
		entries := tx.Bucket(entriesBucket)
		if entries.Bucket([]byte(id)) == nil {
			return nil
		}
		return entries.DeleteBucket([]byte(id))
	})
}

func (s *BoltStore) ExpireUnreadOlderThan(cutoff time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket(entriesBucket)
		return entries.ForEachBucket(func(feedID []byte) error {
			eb := entries.Bucket(feedID)

			// bbolt cursors skip elements when deleting mid-iteration
			var stale [][]byte
			err := eb.ForEach(func(k, v []byte) error {
				var entry Entry
				if err := json.Unmarshal(v, &entry); err != nil {
					return fmt.Errorf("decoding entry %s: %w", k, err)
				}
				if !entry.Read && !entry.Published.IsZero() && entry.Published.Before(cutoff) {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range stale {
				if err := eb.Delete(k); err != nil {
					return err
				}
			}
			removed += len(stale)
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("expiring entries: %w", err)
	}
	return removed, nil
}
