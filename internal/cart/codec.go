package cart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Carts are stored as a plain JSON array of items with prices as JSON
// numbers. Older clients wrote the same array base64-encoded; decode accepts
// both and reports which it saw.

type storedItem struct {
	Item
	Price json.Number `json:"price"`
}

func encodeItems(items []Item) (string, error) {
	stored := make([]storedItem, len(items))
	for i, it := range items {
		stored[i] = storedItem{Item: it, Price: json.Number(it.Price.String())}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeItems(raw string) (items []Item, legacy bool, err error) {
	raw = strings.TrimSpace(raw)
	if err = json.Unmarshal([]byte(raw), &items); err == nil {
		return items, false, nil
	}
	plainErr := err

	b, b64Err := base64.StdEncoding.DecodeString(raw)
	if b64Err != nil {
		return nil, false, fmt.Errorf("decode cart: %w", plainErr)
	}
	if err = json.Unmarshal(b, &items); err != nil {
		return nil, false, fmt.Errorf("decode legacy cart: %w", err)
	}
	return items, true, nil
}

// validItems drops entries that fail Item.Valid.
func validItems(items []Item) (kept []Item, dropped int) {
	kept = make([]Item, 0, len(items))
	for _, it := range items {
		if it.Valid() {
			kept = append(kept, it)
			continue
		}
		dropped++
	}
	return kept, dropped
}
