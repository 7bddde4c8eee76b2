package models

import (
	"encoding/json"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Keys of the device-local blobs. They match the keys older clients wrote,
// so existing local data is picked up unchanged.
const (
	LocalKeyModules = "vault_modules"
	LocalKeyItems   = "vault_items"
	LocalKeyAuth    = "vault_auth"
)

// LocalStore is device-local key/value storage holding JSON blobs.
// Implementations live in the localstore package.
type LocalStore interface {
	// Load returns the blob stored under key. ok is false when the key is absent.
	Load(key string) (blob []byte, ok bool, err error)
	Save(key string, blob []byte) error
	Clear(key string) error
}

// LocalSnapshot is what the loader found on the device.
type LocalSnapshot struct {
	Categories   []Category `json:"categories"`
	Notes        []Note     `json:"notes"`
	HasLocalData bool       `json:"hasLocalData"`
}

// readLocal decodes the list stored under key. A missing key, an unreadable
// store or a malformed blob all yield an empty list: the app must start even
// when local data is corrupt.
func readLocal[T any](local LocalStore, key string) []T {
	blob, ok, err := local.Load(key)
	if err != nil {
		logger.LogErr(serr.Wrap(err, "failed to read local data"), "treating local data as absent", "key", key)
		return nil
	}
	if !ok || len(blob) == 0 {
		return nil
	}

	var records []T
	if err := json.Unmarshal(blob, &records); err != nil {
		logger.LogErr(serr.Wrap(err, "malformed local data"), "treating local data as absent", "key", key)
		return nil
	}
	return records
}

// writeLocal stores records as a JSON array under key.
func writeLocal[T any](local LocalStore, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return serr.Wrap(err, "failed to encode local data under "+key)
	}
	if err := local.Save(key, blob); err != nil {
		return serr.Wrap(err, "failed to save local data under "+key)
	}
	return nil
}
