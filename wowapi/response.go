package wowapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Response is a decoded JSON body. Responses of direct and search requests
// carry the response Date header under DateKey.
type Response map[string]any

// Date parses the stamped Date header.
func (r Response) Date() (time.Time, error) {
	raw, _ := r[DateKey].(string)
	if raw == "" {
		return time.Time{}, fmt.Errorf("response has no %s field", DateKey)
	}
	return http.ParseTime(raw)
}

// Items returns the hydrated items of an item search.
func (r Response) Items() []Response {
	return objects(r["items"])
}

// Results returns the entries of a search response's results list.
func (r Response) Results() []Response {
	return objects(r["results"])
}

// Decode copies the response into a struct whose fields are tagged with the
// JSON names.
func (r Response) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// objects converts a JSON array into responses, skipping anything that is
// not an object.
func objects(v any) []Response {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Response, 0, len(list))
	for _, elem := range list {
		switch m := elem.(type) {
		case map[string]any:
			out = append(out, Response(m))
		case Response:
			out = append(out, m)
		}
	}
	return out
}

// lookup walks nested objects by key.
func lookup(v any, path ...string) any {
	for _, key := range path {
		switch m := v.(type) {
		case map[string]any:
			v = m[key]
		case Response:
			v = m[key]
		default:
			return nil
		}
	}
	return v
}

func lookupString(v any, path ...string) string {
	s, _ := lookup(v, path...).(string)
	return s
}

func lookupInt(v any, path ...string) (int, bool) {
	f, ok := lookup(v, path...).(float64)
	return int(f), ok
}
