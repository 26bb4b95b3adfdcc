package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var describeDBParameters = API{Service: "rds", Operation: "describeDBParameters"}

func TestParseAPI(t *testing.T) {
	api, err := ParseAPI("rds:describeDBParameters")
	require.NoError(t, err)
	assert.Equal(t, describeDBParameters, api)
	assert.Equal(t, "rds:describeDBParameters", api.String())

	for _, bad := range []string{"", "rds", ":op", "svc:"} {
		_, err := ParseAPI(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestKey_MultiSegmentPathsDoNotCollide(t *testing.T) {
	a := describeDBParameters.Key("us-east-1", "a/b", "c")
	b := describeDBParameters.Key("us-east-1", "a", "b/c")
	c := describeDBParameters.Key("us-east-1", "a/b/c")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, []string{"a/b", "c"}, a.Segments())
	assert.Nil(t, describeDBParameters.Key("us-east-1").Segments())
}

func TestKey_Child(t *testing.T) {
	parent := API{Service: "rds", Operation: "describeDBParameterGroups"}.Key("eu-west-1")
	child := parent.Child(describeDBParameters, "pg-1")

	assert.Equal(t, describeDBParameters.Key("eu-west-1", "pg-1"), child)
	assert.Equal(t, "rds:describeDBParameters/eu-west-1/pg-1", child.String())
}

func TestCache_PutIsWriteOnce(t *testing.T) {
	c := New()
	key := describeDBParameters.Key("us-east-1", "pg-1")

	require.NoError(t, c.Put(key, DataNode([]string{"x"})))
	err := c.Put(key, ErrNode(errors.New("later")))
	require.ErrorIs(t, err, ErrDuplicateKey)

	n, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, n.Data)
	assert.Equal(t, 1, c.Len())
}

func TestCache_PutRejectsEmptyNode(t *testing.T) {
	c := New()
	require.ErrorIs(t, c.Put(describeDBParameters.Key("r"), &Node{}), ErrEmptyNode)
	require.ErrorIs(t, c.Put(describeDBParameters.Key("r"), nil), ErrEmptyNode)
	assert.Zero(t, c.Len())
}

func TestCache_GetNeverCreates(t *testing.T) {
	c := New()
	_, ok := c.Get(describeDBParameters.Key("us-east-1"))
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_FreezeBlocksWrites(t *testing.T) {
	c := New()
	require.NoError(t, c.Put(describeDBParameters.Key("a"), DataNode([]int{})))
	c.Freeze()

	assert.True(t, c.Frozen())
	require.ErrorIs(t, c.Put(describeDBParameters.Key("b"), DataNode([]int{})), ErrFrozen)
	_, ok := c.Get(describeDBParameters.Key("a"))
	assert.True(t, ok)
}

func TestCache_ConcurrentDistinctPuts(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Put(describeDBParameters.Key("us-east-1", fmt.Sprint(i)), DataNode(i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 64, c.Len())
}

func TestAs(t *testing.T) {
	n := DataNode([]string{"a"})
	v, ok := As[[]string](n)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, v)

	_, ok = As[[]int](n)
	assert.False(t, ok, "wrong type")

	_, ok = As[[]string](ErrNode(errors.New("boom")))
	assert.False(t, ok, "error node")

	_, ok = As[[]string](nil)
	assert.False(t, ok, "nil node")
}

func TestNode_ErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", ErrNode(errors.New("boom")).ErrorMessage())
	assert.Equal(t, "no data collected", (*Node)(nil).ErrorMessage())
	assert.Equal(t, "empty response", (&Node{}).ErrorMessage())
	assert.Empty(t, DataNode(1).ErrorMessage())
}

func TestSource_MarshalIsStable(t *testing.T) {
	build := func(order []string) *Cache {
		c := New()
		for _, id := range order {
			require.NoError(t, c.Put(describeDBParameters.Key("us-east-1", id), DataNode(map[string]any{"id": id, "n": 1})))
		}
		require.NoError(t, c.Put(describeDBParameters.Key("eu-west-1"), ErrNode(errors.New("AccessDenied"))))
		return c
	}

	first, err := json.Marshal(build([]string{"a", "b", "c"}))
	require.NoError(t, err)
	second, err := json.Marshal(build([]string{"c", "a", "b"}))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(first, &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "eu-west-1", entries[0]["region"])
	assert.Equal(t, map[string]any{"error": "AccessDenied"}, entries[0]["node"])
}

func TestTracker_RecordsOnlyPresentKeys(t *testing.T) {
	c := New()
	present := describeDBParameters.Key("us-east-1", "pg-1")
	require.NoError(t, c.Put(present, DataNode([]string{})))

	tr := Track(c)
	_, ok := tr.Get(present)
	require.True(t, ok)
	_, ok = tr.Get(describeDBParameters.Key("us-east-1", "missing"))
	require.False(t, ok)

	src := tr.Source()
	assert.Len(t, src, 1)
	assert.Contains(t, src, present)

	merged := Source{}
	merged.Merge(src)
	merged.Merge(Source{describeDBParameters.Key("x"): DataNode(1)})
	assert.Len(t, merged, 2)
}
