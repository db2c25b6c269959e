package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Builders(t *testing.T) {
	p := P("summerVouchers").Index(0).Key("attachments")
	assert.Equal(t, "summerVouchers.0.attachments", p.String())
	assert.Equal(t, "attachments", p.Last())
	assert.Equal(t, "summerVouchers.0", p.Parent().String())
	assert.True(t, p.HasPrefix(P("summerVouchers")))
	assert.False(t, P("summerVouchers").HasPrefix(p))

	assert.Equal(t, p.String(), ParsePath(".summerVouchers..0.attachments.").String())
	assert.True(t, ParsePath("").IsZero())
	assert.Equal(t, "a", P("a").Index(-1).String(), "negative index is ignored")
}

func TestPath_BuildersDoNotAlias(t *testing.T) {
	base := P("a")
	left := base.Key("b")
	right := base.Key("c")

	assert.Equal(t, "a.b", left.String())
	assert.Equal(t, "a.c", right.String())
	assert.Equal(t, "a", base.String())
}

func TestState_SetAndGetNested(t *testing.T) {
	s := NewState(nil)

	require.NoError(t, s.SetValue(P("employees").Index(1).Key("firstName"), "Aino"))

	v, ok := s.Value(P("employees").Index(1).Key("firstName"))
	require.True(t, ok)
	assert.Equal(t, "Aino", v)

	first, ok := s.Value(P("employees").Index(0))
	require.True(t, ok, "intermediate slice slot must exist")
	assert.Nil(t, first)

	_, ok = s.Value(P("missing"))
	assert.False(t, ok, "unknown path reports absent")
}

func TestState_SetValueRejectsScalarDescent(t *testing.T) {
	s := NewState(Values{"name": "x"})
	err := s.SetValue(P("name", "first"), "y")
	assert.Error(t, err)
}

func TestState_SetEmptyPath(t *testing.T) {
	s := NewState(nil)
	assert.ErrorIs(t, s.SetValue(Path{}, "x"), ErrEmptyPath)
}

func TestState_LoadOnlyWhileLoading(t *testing.T) {
	s := NewState(nil)
	require.NoError(t, s.Load(Values{"companyName": "Oy Esimerkki Ab"}))
	assert.False(t, s.IsDirty(), "loading never marks dirty")

	require.NoError(t, s.MarkReady())
	assert.ErrorIs(t, s.MarkReady(), ErrAlreadyReady)
	assert.ErrorIs(t, s.Load(Values{}), ErrNotLoading)
	assert.Equal(t, PhaseReady, s.Phase())
}

func TestState_DirtyOnlyAfterReady(t *testing.T) {
	s := NewState(nil)
	require.NoError(t, s.SetValue(P("a"), "1"))
	assert.False(t, s.IsDirty())

	require.NoError(t, s.MarkReady())
	require.NoError(t, s.SetValue(P("a"), "2"))
	assert.True(t, s.IsDirty())
	assert.True(t, s.IsFieldDirty(P("a")))
	assert.Equal(t, []string{"a"}, s.DirtyPaths())
}

func TestState_Errors(t *testing.T) {
	s := NewState(nil)
	p := P("email")

	_, ok := s.Error(p)
	assert.False(t, ok)

	s.SetError(p, FieldError{Kind: KindPatternMismatch, Message: "invalid"})
	e, ok := s.Error(p)
	require.True(t, ok)
	assert.Equal(t, KindPatternMismatch, e.Kind)
	assert.True(t, s.HasErrors())

	s.ClearError(p)
	assert.False(t, s.HasErrors())

	s.ReplaceErrors(map[string]FieldError{"a": {Kind: KindRequiredMissing}})
	assert.Len(t, s.Errors(), 1)
}

func TestState_ObserversRunOncePerBatchInOrder(t *testing.T) {
	s := NewState(nil)
	require.NoError(t, s.MarkReady())

	var order []string
	var sizes []int
	s.Observe(func(b []Change) {
		order = append(order, "first")
		sizes = append(sizes, len(b))
	})
	s.Observe(func([]Change) { order = append(order, "second") })

	s.Batch(func() {
		_ = s.SetValue(P("a"), 1.0)
		_ = s.SetValue(P("b"), 2.0)
	})

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []int{2}, sizes)
}

func TestState_EqualWriteDoesNotDispatch(t *testing.T) {
	s := NewState(Values{"a": "x"})
	calls := 0
	s.Observe(func([]Change) { calls++ })

	require.NoError(t, s.SetValue(P("a"), "x"))
	assert.Zero(t, calls)
}

func TestState_WritesDuringDispatchAreNotRedispatched(t *testing.T) {
	s := NewState(nil)
	require.NoError(t, s.MarkReady())

	calls := 0
	s.Observe(func(b []Change) {
		calls++
		_ = s.SetValue(P("derived"), "set by observer")
	})

	require.NoError(t, s.SetValue(P("trigger"), true))
	assert.Equal(t, 1, calls)

	v, ok := s.Value(P("derived"))
	require.True(t, ok, "observer write is applied")
	assert.Equal(t, "set by observer", v)
}

func TestState_WatchMatchesRelatedPaths(t *testing.T) {
	s := NewState(nil)
	var seen []any
	unwatch := s.Watch(P("address"), func(v any) { seen = append(seen, v) })

	require.NoError(t, s.SetValue(P("address", "city"), "Helsinki"))
	require.NoError(t, s.SetValue(P("other"), 1.0))
	assert.Len(t, seen, 1)

	unwatch()
	require.NoError(t, s.SetValue(P("address", "city"), "Espoo"))
	assert.Len(t, seen, 1)
}

func TestState_SnapshotIsDeepCopy(t *testing.T) {
	s := NewState(Values{"rows": []any{map[string]any{"amount": "10"}}})
	snap := s.Snapshot()
	snap["rows"].([]any)[0].(map[string]any)["amount"] = "99"

	v, _ := s.Value(P("rows").Index(0).Key("amount"))
	assert.Equal(t, "10", v)
}

func TestState_Unset(t *testing.T) {
	s := NewState(Values{"a": map[string]any{"b": "x"}})
	s.Unset(P("a", "b"))
	_, ok := s.Value(P("a", "b"))
	assert.False(t, ok)
	s.Unset(P("nope"))
}

func TestField_TypedAccess(t *testing.T) {
	s := NewState(nil)
	start := NewField[string](P("startDate"))
	count := NewField[float64](P("count"))

	_, ok := start.Get(s)
	assert.False(t, ok)

	require.NoError(t, start.Set(s, "1.1.2024"))
	v, ok := start.Get(s)
	require.True(t, ok)
	assert.Equal(t, "1.1.2024", v)

	require.NoError(t, s.SetValue(count.Path(), "not a number"))
	_, ok = count.Get(s)
	assert.False(t, ok, "mismatched type reports absent")

	s.SetError(start.Path(), FieldError{Kind: KindOutOfRange})
	e, ok := start.Error(s)
	require.True(t, ok)
	assert.Equal(t, KindOutOfRange, e.Kind)

	city := At[string](NewField[map[string]any](P("address")), P("city"))
	assert.Equal(t, "address.city", city.Path().String())
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, true},
		{"blank string", "  \t", true},
		{"string", "x", false},
		{"empty slice", []any{}, true},
		{"slice", []any{1}, false},
		{"empty map", map[string]any{}, true},
		{"false is a value", false, false},
		{"zero is a value", 0.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmpty(tt.in))
		})
	}
}

func TestMerge(t *testing.T) {
	base := Values{
		"companyName": "",
		"employee":    map[string]any{"firstName": "", "lastName": ""},
		"attachments": []any{},
	}
	over := Values{
		"companyName": "Oy Testi Ab",
		"employee":    map[string]any{"firstName": "Matti"},
		"attachments": []any{map[string]any{"id": "a1"}},
		"extra":       nil,
	}

	got := Merge(base, over)
	assert.Equal(t, Values{
		"companyName": "Oy Testi Ab",
		"employee":    map[string]any{"firstName": "Matti", "lastName": ""},
		"attachments": []any{map[string]any{"id": "a1"}},
		"extra":       nil,
	}, got)

	got["employee"].(map[string]any)["lastName"] = "changed"
	assert.Equal(t, "", base["employee"].(map[string]any)["lastName"])

	v, ok := Get(got, P("employee", "firstName"))
	require.True(t, ok)
	assert.Equal(t, "Matti", v)
}
