package api

import (
	"encoding/json"

	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/resource"
)

// listEnvelope is the API's list response convention:
// {data: {data: [...]}, totalPages}.
type listEnvelope struct {
	Data struct {
		Data json.RawMessage `json:"data"`
	} `json:"data"`
	TotalPages int `json:"totalPages"`
}

// decodeListPage normalizes a list response into a page. A missing or
// non-array data.data payload decodes to an empty page with a decode
// log, never an error.
func decodeListPage[T any](logger *log.Logger, body []byte, q resource.Query) resource.Page[T] {
	page := resource.Page[T]{
		Items:       []T{},
		CurrentPage: q.Page,
		TotalPages:  1,
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.WithError(err).Debug("malformed list envelope, treating as empty page")
		return page
	}

	if env.TotalPages > 0 {
		page.TotalPages = env.TotalPages
	}

	if len(env.Data.Data) == 0 {
		logger.Debug("list envelope missing data.data, treating as empty page")
		return page
	}

	var items []T
	if err := json.Unmarshal(env.Data.Data, &items); err != nil {
		logger.WithError(err).Debug("non-array data.data payload, treating as empty page")
		return page
	}

	if items != nil {
		page.Items = items
	}
	return page
}
