package cache

import (
	"fmt"
	"strings"
)

// pathSep separates parent identifiers inside Key.path. Provider identifiers
// never contain the ASCII unit separator, so joined paths cannot collide.
const pathSep = "\x1f"

// API identifies one provider operation, e.g. {"rds", "describeDBParameters"}.
// Rules declare the APIs they read; collector operations declare the API
// they populate.
type API struct {
	Service   string
	Operation string
}

// String renders the API as "service:operation".
func (a API) String() string {
	return a.Service + ":" + a.Operation
}

// ParseAPI parses the "service:operation" form produced by String.
func ParseAPI(s string) (API, error) {
	svc, op, ok := strings.Cut(s, ":")
	if !ok || svc == "" || op == "" {
		return API{}, fmt.Errorf("invalid API %q: want service:operation", s)
	}
	return API{Service: svc, Operation: op}, nil
}

// Key returns the cache key for this API in region, scoped under zero or more
// parent resource identifiers (outermost first).
func (a API) Key(region string, ids ...string) Key {
	return Key{
		Service:   a.Service,
		Operation: a.Operation,
		Region:    region,
		path:      strings.Join(ids, pathSep),
	}
}

// Key addresses one CacheNode. It is comparable and is only built through
// API.Key, so two collector units derive the same Key exactly when they
// target the same (service, operation, region, parents) tuple.
type Key struct {
	Service   string
	Operation string
	Region    string
	path      string
}

// API returns the operation this key belongs to.
func (k Key) API() API {
	return API{Service: k.Service, Operation: k.Operation}
}

// Segments returns the parent identifiers of the key, outermost first.
func (k Key) Segments() []string {
	if k.path == "" {
		return nil
	}
	return strings.Split(k.path, pathSep)
}

// Child returns the key of op scoped under this key's parents plus id.
func (k Key) Child(op API, id string) Key {
	return op.Key(k.Region, append(k.Segments(), id)...)
}

// String renders the key as "service:operation/region[/id...]".
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.API().String())
	b.WriteString("/")
	b.WriteString(k.Region)
	for _, s := range k.Segments() {
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String()
}
