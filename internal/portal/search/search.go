// Package search keeps advisor contacts in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"brokerage-portal/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrSearchFailed = errors.New("contact search failed")
	ErrIndexFailed  = errors.New("contact indexing failed")
	ErrMissingIndex = errors.New("index name is required")
)

const (
	defaultSize = 20
	maxSize     = 100
)

type Query struct {
	Text      string `json:"text"`
	AdvisorID string `json:"advisorId,omitempty"`
	Country   string `json:"country,omitempty"`
	From      int    `json:"from"`
	Size      int    `json:"size"`
}

type Result struct {
	Contacts  []models.Contact `json:"contacts"`
	TotalHits int64            `json:"totalHits"`
	MaxScore  float64          `json:"maxScore"`
	Took      int64            `json:"took"`
}

type ContactIndex struct {
	client *elasticsearch.Client
	index  string
	// Refresh is passed to index requests; "wait_for" makes writes
	// visible to the next search.
	Refresh string
}

func NewContactIndex(client *elasticsearch.Client, index string) (*ContactIndex, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	return &ContactIndex{client: client, index: index}, nil
}

func (c *ContactIndex) Name() string { return c.index }

// Index upserts the contact under its ID.
func (c *ContactIndex) Index(ctx context.Context, contact models.Contact) error {
	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: contact.ID,
		Body:       bytes.NewReader(body),
		Refresh:    c.Refresh,
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.String())
	}
	return nil
}

func buildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"firstName^2", "lastName^3", "email", "company"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}
	if q.AdvisorID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"advisorId.keyword": q.AdvisorID}})
	}
	if q.Country != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"country.keyword": q.Country}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
}

func pageBounds(q Query) (from, size int) {
	from, size = q.From, q.Size
	if from < 0 {
		from = 0
	}
	switch {
	case size < 1:
		size = defaultSize
	case size > maxSize:
		size = maxSize
	}
	return from, size
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Source models.Contact `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *ContactIndex) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	from, size := pageBounds(q)

	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	out := &Result{Contacts: make([]models.Contact, 0, len(r.Hits.Hits)), TotalHits: r.Hits.Total.Value, Took: r.Took}
	if r.Hits.MaxScore != nil {
		out.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		out.Contacts = append(out.Contacts, h.Source)
	}
	return out, nil
}
