package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cmdbase/internal/client/storage"
	"github.com/iudanet/cmdbase/internal/models"
)

// Весь список хранится одним значением: зеркало заменяется целиком
// при каждом успешном fetch
var listKey = []byte("list")

// SaveCommands replaces the cached command list
func (s *Storage) SaveCommands(ctx context.Context, commands []models.Command) error {
	return s.saveList(bucketCommands, commands)
}

// GetCommands returns the cached command list
func (s *Storage) GetCommands(ctx context.Context) ([]models.Command, error) {
	var commands []models.Command
	if err := s.getList(bucketCommands, &commands); err != nil {
		return nil, err
	}
	return commands, nil
}

// SaveDevices replaces the cached device list
func (s *Storage) SaveDevices(ctx context.Context, devices []models.Device) error {
	return s.saveList(bucketDevices, devices)
}

// GetDevices returns the cached device list
func (s *Storage) GetDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := s.getList(bucketDevices, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// ClearCache drops both mirrors (logout)
func (s *Storage) ClearCache(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketCommands, bucketDevices} {
			bucket := tx.Bucket(name)
			if bucket == nil {
				return fmt.Errorf("bucket %s not found", name)
			}
			if err := bucket.Delete(listKey); err != nil {
				return fmt.Errorf("failed to clear bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Storage) saveList(bucketName []byte, list any) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to marshal list: %w", err)
		}

		if err := bucket.Put(listKey, data); err != nil {
			return fmt.Errorf("failed to save list: %w", err)
		}

		return nil
	})
}

func (s *Storage) getList(bucketName []byte, out any) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		data := bucket.Get(listKey)
		if data == nil {
			return storage.ErrCacheEmpty
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to unmarshal list: %w", err)
		}

		return nil
	})
}
