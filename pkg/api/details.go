package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/person"
)

// Query selects search results by partial name or location match. At least
// one field must be set; Name wins when both are.
type Query struct {
	Name     string
	Location string
}

func (q Query) values() (url.Values, error) {
	v := url.Values{}
	switch name, loc := strings.TrimSpace(q.Name), strings.TrimSpace(q.Location); {
	case name != "":
		v.Set("name", name)
	case loc != "":
		v.Set("location", loc)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "search needs a name or a location")
	}
	return v, nil
}

// FetchNetwork returns the immediate family slice of id: the person, their
// parents, spouses and children.
func (c *Client) FetchNetwork(ctx context.Context, id string) (people []person.Person, err error) {
	if err := errors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	done := track(ctx, "network", id)
	defer func() { done(len(people), err) }()

	err = c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/details/" + url.PathEscape(id) + "/network",
	}, &people)
	return people, err
}

// Search returns people matching q. Records without an id are dropped.
func (c *Client) Search(ctx context.Context, q Query) (people []person.Person, err error) {
	values, err := q.values()
	if err != nil {
		return nil, err
	}
	key := cache.SearchKey(c.BaseURL(), values.Encode())
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		if json.Unmarshal(data, &people) == nil {
			observability.Cache().OnCacheHit(ctx, "search")
			return people, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "search")

	done := track(ctx, "search", values.Encode())
	defer func() { done(len(people), err) }()

	var raw []person.Person
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/details/search", query: values}, &raw); err != nil {
		return nil, err
	}
	people = make([]person.Person, 0, len(raw))
	for _, p := range raw {
		if person.Validate(p) == nil {
			people = append(people, person.Normalize(p))
		}
	}

	if data, err := json.Marshal(people); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "search", len(data))
		}
	}
	return people, nil
}

// Create posts p and returns the id assigned by the backend. Temporary ids
// and inline avatars are never sent.
func (c *Client) Create(ctx context.Context, p person.Person) (id string, err error) {
	done := track(ctx, "create", p.ID)
	defer func() {
		n := 0
		if id != "" {
			n = 1
		}
		done(n, err)
	}()

	var resp person.Payload
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/details/add", body: person.ToPayload(p)}, &resp); err != nil {
		return "", err
	}
	if id = resp.Identifier(); id == "" {
		return "", errors.New(errors.ErrCodeInvalidRecord, "create response carries no id")
	}
	return id, nil
}

// Update puts p and returns the stored record translated back to the nested
// shape. Children are kept from p, since the flat response cannot carry them.
func (c *Client) Update(ctx context.Context, p person.Person) (updated person.Person, err error) {
	if err := errors.ValidatePersonID(p.ID); err != nil {
		return person.Person{}, err
	}
	if person.IsTemporary(p.ID) {
		return person.Person{}, errors.New(errors.ErrCodeInvalidInput, "person %s has not been created yet", p.ID)
	}
	done := track(ctx, "update", p.ID)
	defer func() { done(1, err) }()

	var resp person.Payload
	if err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/details/" + url.PathEscape(p.ID),
		body:   person.ToPayload(p),
	}, &resp); err != nil {
		return person.Person{}, err
	}
	return person.FromPayload(resp, &p), nil
}

// track reports a backend call to the chart hooks.
func track(ctx context.Context, op, id string) func(records int, err error) {
	hooks := observability.Chart()
	hooks.OnFetchStart(ctx, op, id)
	start := time.Now()
	return func(records int, err error) {
		hooks.OnFetchComplete(ctx, op, id, records, time.Since(start), err)
	}
}
