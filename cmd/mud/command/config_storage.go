package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/persist"
	"github.com/pixil98/go-simplemud/internal/storage"
)

type StorageConfig struct {
	Items    AssetConfig[*game.ItemSpec]  `json:"items"`
	Rooms    AssetConfig[*game.RoomSpec]  `json:"rooms"`
	Stores   AssetConfig[*game.StoreSpec] `json:"stores"`
	Database string                       `json:"database"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Items.Validate("items"))
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Stores.Validate("stores"))

	if c.Database == "" {
		el.Add(fmt.Errorf("database: path is required"))
	} else if _, err := os.Stat(filepath.Dir(c.Database)); err != nil {
		el.Add(fmt.Errorf("database: invalid directory for %q: %w", c.Database, err))
	}

	return el.Err()
}

// BuildLoaders opens the catalog file stores and returns loaders that re-read
// them on every call. Store entries resolve their items through lookup.
func (c *StorageConfig) BuildLoaders(lookup func(storage.Identifier) (*game.Item, bool)) (game.Loaders, error) {
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return game.Loaders{}, fmt.Errorf("creating item store: %w", err)
	}
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return game.Loaders{}, fmt.Errorf("creating room store: %w", err)
	}
	stores, err := c.Stores.BuildFileStore()
	if err != nil {
		return game.Loaders{}, fmt.Errorf("creating store store: %w", err)
	}

	return game.Loaders{
		Items: loader(items, func(id storage.Identifier, spec *game.ItemSpec) (*game.Item, error) {
			return game.NewItem(id, spec), nil
		}),
		Rooms: loader(rooms, func(id storage.Identifier, spec *game.RoomSpec) (*game.Room, error) {
			return game.NewRoom(id, spec), nil
		}),
		Stores: loader(stores, func(id storage.Identifier, spec *game.StoreSpec) (*game.Store, error) {
			return game.NewStore(id, spec, lookup)
		}),
	}, nil
}

func (c *StorageConfig) OpenDatabase() (*persist.Store, error) {
	return persist.Open(c.Database)
}

// loader re-reads fs and builds one entity per asset, in id order.
func loader[S storage.ValidatingSpec, T any](fs *storage.FileStore[S], build func(storage.Identifier, S) (T, error)) game.Loader[T] {
	return func() ([]T, error) {
		if err := fs.Reload(); err != nil {
			return nil, err
		}

		var out []T
		for _, id := range fs.Ids() {
			e, err := build(id, fs.Get(id))
			if err != nil {
				return nil, fmt.Errorf("building %s: %w", id, err)
			}
			out = append(out, e)
		}
		return out, nil
	}
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
