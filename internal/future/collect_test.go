package future

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/futurescope/internal/entry"
	"github.com/coral-mesh/futurescope/internal/testutil"
)

func recordNames(c *Collection) []string {
	var names []string
	for _, rec := range c.Records() {
		names = append(names, rec.Name)
	}
	return names
}

func TestExtract(t *testing.T) {
	s := testutil.Struct(0x100, "ConnectFuture",
		testutil.MemberAt(0x110, "__state", 0x200, 0, 1),
		testutil.Member(0x120, "socket", 0x300),
		// No type reference.
		testutil.Raw(dwarf.TagMember, 0x130, testutil.NameField("dangling")),
		// No name.
		testutil.Raw(dwarf.TagMember, 0x140, testutil.TypeField(0x400)),
		// Not a member.
		testutil.Raw(dwarf.TagSubprogram, 0x150, testutil.NameField("poll"), testutil.TypeField(0x500)),
		// Nested members are not direct children and are skipped.
		testutil.Struct(0x160, "Inner", testutil.Member(0x170, "deep", 0x600)),
	)

	rec := Extract(s, DefaultClassifier())

	assert.Equal(t, "ConnectFuture", rec.Name)
	assert.False(t, rec.IsStateMachine)
	assert.Empty(t, rec.Dependencies)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, Field{Name: "__state", TypeID: 0x200, Offset: 0, Size: 1}, rec.Fields[0])
	assert.Equal(t, Field{Name: "socket", TypeID: 0x300}, rec.Fields[1])
}

func TestExtract_FieldDefaulting(t *testing.T) {
	s := testutil.Struct(0x100, "SleepFuture", testutil.Member(0x110, "deadline", 0x200))

	rec := Extract(s, DefaultClassifier())

	require.Len(t, rec.Fields, 1)
	assert.Zero(t, rec.Fields[0].Offset)
	assert.Zero(t, rec.Fields[0].Size)
	assert.False(t, rec.Fields[0].DependsOnStateMachine)
}

func TestExtract_NegativeOffsetIsAbsent(t *testing.T) {
	m := testutil.Raw(dwarf.TagMember, 0x110,
		testutil.NameField("x"), testutil.TypeField(0x200), testutil.OffsetField(-8))
	rec := Extract(testutil.Struct(0x100, "OddFuture", m), DefaultClassifier())

	require.Len(t, rec.Fields, 1)
	assert.Zero(t, rec.Fields[0].Offset)
}

func TestExtract_StateMachineFlag(t *testing.T) {
	rec := Extract(testutil.Struct(0x100, "FutureState"), DefaultClassifier())
	assert.True(t, rec.IsStateMachine)
	assert.NotNil(t, rec.Fields)
	assert.Empty(t, rec.Fields)
}

func TestCollect_PreOrder(t *testing.T) {
	root := testutil.CompileUnit("lib.rs",
		testutil.Namespace(0x10, "outer",
			testutil.Struct(0x20, "AFuture",
				// Nested struct under a future is visited after its parent.
				testutil.Struct(0x30, "BFuture"),
			),
			testutil.Struct(0x40, "CFuture"),
		),
		testutil.Struct(0x50, "Plain"),
		testutil.Namespace(0x60, "inner", testutil.Struct(0x70, "DFuture")),
	)

	c := Collect(root, DefaultClassifier())

	assert.Equal(t, []string{"AFuture", "BFuture", "CFuture", "DFuture"}, recordNames(c))
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 8, c.Stats().Visited)
}

func TestCollect_IndexesEveryFutureID(t *testing.T) {
	root := testutil.CompileUnit("lib.rs",
		testutil.Struct(0x20, "EmptyFuture"),
		testutil.Struct(0x30, "Other"),
	)

	c := Collect(root, DefaultClassifier())

	name, ok := c.Lookup(0x20)
	require.True(t, ok)
	assert.Equal(t, "EmptyFuture", name)
	_, ok = c.Lookup(0x30)
	assert.False(t, ok)
}

func TestCollect_DuplicateNameOverwritesInPlace(t *testing.T) {
	root := testutil.CompileUnit("lib.rs",
		testutil.Struct(0x20, "GenFuture", testutil.Member(0x21, "first", 0x90)),
		testutil.Struct(0x30, "OtherFuture"),
		testutil.Struct(0x40, "GenFuture", testutil.Member(0x41, "second", 0x91)),
	)

	c := Collect(root, DefaultClassifier())

	assert.Equal(t, []string{"GenFuture", "OtherFuture"}, recordNames(c))
	rec, ok := c.Record("GenFuture")
	require.True(t, ok)
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "second", rec.Fields[0].Name)

	// Both identifiers keep resolving to the surviving record.
	for _, id := range []entry.TypeID{0x20, 0x40} {
		name, ok := c.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, "GenFuture", name)
	}
}

func TestCollect_NilRoot(t *testing.T) {
	c := Collect(nil, DefaultClassifier())
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Records())
}

func TestCollect_DeepTree(t *testing.T) {
	// Deep enough that a recursive walk would be noticeably costly.
	const depth = 50000
	root := testutil.CompileUnit("deep.rs")
	cur := root
	for i := 0; i < depth; i++ {
		ns := testutil.Namespace(dwarf.Offset(0x10+i), "ns")
		testutil.With(cur, ns)
		cur = ns
	}
	testutil.With(cur, testutil.Struct(0x1000000, "LeafFuture"))

	c := Collect(root, DefaultClassifier())

	assert.Equal(t, []string{"LeafFuture"}, recordNames(c))
}

func TestCollect_CustomClassifier(t *testing.T) {
	root := testutil.CompileUnit("lib.rs",
		testutil.Struct(0x20, "{async_fn_env#0}"),
		testutil.Struct(0x30, "GenFuture"),
	)
	cls := Classifier{
		IsFuture:       NameContains("{async_fn_env"),
		IsStateMachine: NameContains("{async_fn_env"),
	}

	c := Collect(root, cls)

	assert.Equal(t, []string{"{async_fn_env#0}"}, recordNames(c))
	rec, _ := c.Record("{async_fn_env#0}")
	assert.True(t, rec.IsStateMachine)
}
