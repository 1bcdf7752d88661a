package smc

import (
	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
)

// KeyCountKey holds the number of keys exposed by the controller.
var KeyCountKey = MustFourCC("#KEY")

// KeyInfo describes the payload of a key.
type KeyInfo struct {
	Size int
	Type FourCC
}

// KeyReader is a connection to the management controller. Implementations
// are not safe for concurrent use.
type KeyReader interface {
	KeyCount() (int, error)
	KeyAt(index int) (FourCC, error)
	KeyInfo(key FourCC) (KeyInfo, error)
	ReadKey(key FourCC, info KeyInfo) ([]byte, error)
	Close() error
}

// Entry is a successfully decoded key.
type Entry struct {
	Key   FourCC
	Type  FourCC
	Value Value
}

// ReadAll enumerates every key accepted by filter and decodes its payload.
// Keys that cannot be read or decoded are skipped. An error is returned only
// when the key table itself cannot be enumerated.
func ReadAll(r KeyReader, filter func(FourCC) bool, log logger.Logger) ([]Entry, error) {
	errFactory := errors.New()

	count, err := r.KeyCount()
	if err != nil {
		return nil, errFactory.Wrap(ErrKeyCountFailed, err)
	}

	entries := make([]Entry, 0, count/4)
	for i := range count {
		key, err := r.KeyAt(i)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Skipping key index")
			continue
		}

		if filter != nil && !filter(key) {
			continue
		}

		info, err := r.KeyInfo(key)
		if err != nil {
			log.Debug().Err(err).Str("key", key.String()).Msg("Skipping key without info")
			continue
		}

		payload, err := r.ReadKey(key, info)
		if err != nil {
			log.Debug().Err(err).Str("key", key.String()).Msg("Skipping unreadable key")
			continue
		}

		value, ok := Decode(info.Type, payload)
		if !ok {
			log.Debug().
				Str("key", key.String()).
				Str("type", info.Type.String()).
				Int("size", len(payload)).
				Msg("Decode miss")
			continue
		}

		entries = append(entries, Entry{Key: key, Type: info.Type, Value: value})
	}

	return entries, nil
}
