package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
)

// ThemeRepository implements storage.ThemeRepository for BadgerDB.
type ThemeRepository struct {
	backend *Backend
}

var _ storage.ThemeRepository = (*ThemeRepository)(nil)

// NewThemeRepository creates a new ThemeRepository.
func NewThemeRepository(backend *Backend) *ThemeRepository {
	return &ThemeRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database handle.
func (r *ThemeRepository) Close() error {
	return nil
}

// PutThemes stores themes under the content ID of their name.
func (r *ThemeRepository) PutThemes(ctx context.Context, themes ...*core.Theme) ([]*core.Theme, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, theme := range themes {
			theme.Id = core.IDFromContent(theme.Name)
			key := makeThemeKey(theme.Id)

			old, err := readTheme(tx, key)
			if err != nil {
				return err
			}
			switch {
			case old != nil && theme.InsertedAt.IsZero():
				theme.InsertedAt = old.InsertedAt
			case theme.InsertedAt.IsZero():
				theme.InsertedAt = now
			}
			theme.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalTheme(theme)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return themes, err
}

// GetTheme retrieves a theme by ID.
func (r *ThemeRepository) GetTheme(ctx context.Context, id core.ID) (*core.Theme, error) {
	var result *core.Theme
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTheme(tx, makeThemeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: theme %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// ListThemes returns all themes ordered by name.
func (r *ThemeRepository) ListThemes(ctx context.Context) ([]*core.Theme, error) {
	themes := []*core.Theme{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(themePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				theme, err := storage.UnmarshalTheme(val)
				if err != nil {
					return err
				}
				themes = append(themes, theme)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(themes, func(a, b *core.Theme) int {
		return strings.Compare(a.Name, b.Name)
	})
	return themes, nil
}

// DeleteThemes removes themes by ID.
func (r *ThemeRepository) DeleteThemes(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeThemeKey(id)
			theme, err := readTheme(tx, key)
			if err != nil {
				return err
			}
			if theme == nil {
				return fmt.Errorf("%w: theme %d", storage.ErrNotFound, id)
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func readTheme(tx *badger.Txn, key []byte) (*core.Theme, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var theme *core.Theme
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		theme, unmarshalErr = storage.UnmarshalTheme(val)
		return unmarshalErr
	})
	return theme, err
}
