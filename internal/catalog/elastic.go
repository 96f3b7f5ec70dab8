package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/plant_shop/pkg/logging"
)

func NewESClient(addr, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	slog.Info("elasticsearch connected", "addr", addr)
	return client, nil
}

// ESLookup reads display data from the product search index with a single
// mget. Ids the index does not know, or any index failure, fall back to
// Fallback.
type ESLookup struct {
	ES       *elasticsearch.Client
	Index    string
	Fallback Lookup
}

type esProductDoc struct {
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url"`
	Images     []string        `json:"images"`
	Attributes json.RawMessage `json:"attributes"`
}

func (l *ESLookup) Display(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Display, error) {
	out := make(map[uuid.UUID]Display, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	found, err := l.mget(ctx, ids)
	if err != nil {
		logging.FromContext(ctx).Warn("catalog_es_lookup_failed", "error", err)
		return l.fallback(ctx, ids, out)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if d, ok := found[id]; ok {
			out[id] = d
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}
	return l.fallback(ctx, missing, out)
}

func (l *ESLookup) fallback(ctx context.Context, ids []uuid.UUID, out map[uuid.UUID]Display) (map[uuid.UUID]Display, error) {
	if l.Fallback == nil {
		return out, nil
	}
	extra, err := l.Fallback.Display(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, d := range extra {
		out[id] = d
	}
	return out, nil
}

func (l *ESLookup) mget(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Display, error) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]any{"ids": strIDs}); err != nil {
		return nil, err
	}

	res, err := l.ES.Mget(&buf,
		l.ES.Mget.WithContext(ctx),
		l.ES.Mget.WithIndex(l.Index),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("mget %s: %s", l.Index, res.Status())
	}

	var r struct {
		Docs []struct {
			ID     string       `json:"_id"`
			Found  bool         `json:"found"`
			Source esProductDoc `json:"_source"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode mget: %w", err)
	}

	out := make(map[uuid.UUID]Display, len(r.Docs))
	for _, doc := range r.Docs {
		if !doc.Found {
			continue
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		d := Display{ProductID: id, Name: doc.Source.Name, ImageURL: doc.Source.ImageURL}
		if d.ImageURL == "" && len(doc.Source.Images) > 0 {
			d.ImageURL = doc.Source.Images[0]
		}
		if len(doc.Source.Attributes) > 0 && string(doc.Source.Attributes) != "null" {
			d.Attributes = string(doc.Source.Attributes)
		}
		out[id] = d
	}
	return out, nil
}
