package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxRecentSearches caps the recent search history
const MaxRecentSearches = 10

// GetList reads a JSON string array. A missing key is an empty list.
func GetList(s Store, key string) ([]string, error) {
	raw, err := s.GetItem(key)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList(key, raw)
}

// SetList stores list as a JSON string array
func SetList(s Store, key string, list []string) error {
	raw, err := encodeList(list)
	if err != nil {
		return err
	}
	return s.SetItem(key, raw)
}

// UpdateList applies fn to the list at key and stores the result.
// Stores implementing Updater do this atomically.
func UpdateList(s Store, key string, fn func([]string) []string) ([]string, error) {
	var result []string
	apply := func(raw string, ok bool) (string, error) {
		list := []string{}
		if ok {
			var err error
			if list, err = decodeList(key, raw); err != nil {
				return "", err
			}
		}
		result = fn(list)
		return encodeList(result)
	}

	if u, ok := s.(Updater); ok {
		if err := u.UpdateItem(key, apply); err != nil {
			return nil, err
		}
		return result, nil
	}

	raw, err := s.GetItem(key)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	updated, err := apply(raw, found)
	if err != nil {
		return nil, err
	}
	return result, s.SetItem(key, updated)
}

func decodeList(key, raw string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AddRecentSearch puts query at the front of the history, dropping an earlier
// case-insensitive duplicate and anything past MaxRecentSearches. Blank queries are ignored.
func AddRecentSearch(s Store, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return GetList(s, KeyRecentSearches)
	}
	return UpdateList(s, KeyRecentSearches, func(list []string) []string {
		list = slices.DeleteFunc(list, func(q string) bool { return strings.EqualFold(q, query) })
		list = append([]string{query}, list...)
		if len(list) > MaxRecentSearches {
			list = list[:MaxRecentSearches]
		}
		return list
	})
}

// ClearRecentSearches forgets the search history
func ClearRecentSearches(s Store) error {
	return s.RemoveItem(KeyRecentSearches)
}

// AddToSet adds id to the list at key unless it is already there
func AddToSet(s Store, key, id string) error {
	_, err := UpdateList(s, key, func(list []string) []string {
		if slices.Contains(list, id) {
			return list
		}
		return append(list, id)
	})
	return err
}

// RemoveFromSet removes id from the list at key
func RemoveFromSet(s Store, key, id string) error {
	_, err := UpdateList(s, key, func(list []string) []string {
		return slices.DeleteFunc(list, func(v string) bool { return v == id })
	})
	return err
}

// InSet reports whether id is in the list at key
func InSet(s Store, key, id string) (bool, error) {
	list, err := GetList(s, key)
	if err != nil {
		return false, err
	}
	return slices.Contains(list, id), nil
}
