package modifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takehaya/flowgen/pkg/field"
)

const typeNibble = "test_nibble"

// nibble is a mandatory modifier with a single in-config 4-bit field.
type nibble struct {
	*Base
	value *field.Unsigned
}

func init() {
	MustRegister(typeNibble, true, func(flow Flow, info Info, opts Options) (Modifier, error) {
		b, err := NewBase(flow, info, "Nibble", "Four bits", opts)
		if err != nil {
			return nil, err
		}
		v, err := field.NewUnsigned(field.UnsignedSpec{Spec: editable("value", "Value", "Four bits", 4)})
		if err != nil {
			return nil, err
		}
		if err := b.AddFields(v); err != nil {
			return nil, err
		}
		return &nibble{Base: b, value: v}, nil
	})
}

type testFlow struct {
	mods []Modifier
}

func (f *testFlow) ModifierByType(tag string) Modifier {
	for _, m := range f.mods {
		if m.Type() == tag {
			return m
		}
	}
	return nil
}

func (f *testFlow) add(t *testing.T, tag string, opts Options) Modifier {
	t.Helper()
	m, ok, err := New(tag, f, opts)
	require.True(t, ok, tag)
	require.NoError(t, err)
	f.mods = append(f.mods, m)
	return m
}

func newSkeletonAndRate(t *testing.T) (*SkeletonSender, *Rate) {
	t.Helper()
	fl := &testFlow{}
	s := fl.add(t, TypeSkeletonSender, Options{"id": 0}).(*SkeletonSender)
	r := fl.add(t, TypeRate, Options{"id": 1}).(*Rate)
	return s, r
}

func TestPackNibble(t *testing.T) {
	fl := &testFlow{}
	m := fl.add(t, typeNibble, Options{"id": 7})
	require.NoError(t, m.(*nibble).value.SetAutoValue(0xA))

	assert.Equal(t, []byte{0x07, 0xA0}, m.Bytes())
	assert.Equal(t, []string{"00000000", "07A00000"}, HexLines(m.Bytes()))
	assert.Equal(t,
		"-- Nibble\n"+
			"--------------------\n"+
			"-- Identifier: 7\n"+
			"-- Value: 10\n"+
			"00000000\n"+
			"07A00000",
		m.ConfigData())
}

func TestPackAcrossByteBoundaries(t *testing.T) {
	a, err := field.NewBits(field.Spec{BitSize: 3}, []byte{0x05})
	require.NoError(t, err)
	b, err := field.NewUnsigned(field.UnsignedSpec{Spec: field.Spec{BitSize: 11}, Default: 0x5A3})
	require.NoError(t, err)
	c, err := field.NewBits(field.Spec{BitSize: 2}, []byte{0x02})
	require.NoError(t, err)
	hidden, err := field.NewUnsigned(field.UnsignedSpec{Spec: field.Spec{BitSize: 32, InputOnly: true}, Default: 0xFFFFFFFF})
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01, 0xB6, 0x8E}, Pack(1, []field.Field{a, hidden, b, c}))
}

func TestPackMasksUnusedBits(t *testing.T) {
	a, err := field.NewBits(field.Spec{BitSize: 4}, nil)
	require.NoError(t, err)
	a.SetAutoBytes([]byte{0xFF})
	b, err := field.NewBits(field.Spec{BitSize: 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0xF0}, Pack(0, []field.Field{a, b}))
}

func TestPackLength(t *testing.T) {
	sizes := [][]int{{1}, {7, 1}, {8}, {3, 11, 2}, {13, 32, 11}, {37}, {64, 64, 1}}
	for _, set := range sizes {
		var fields []field.Field
		total := 8
		for _, n := range set {
			f, err := field.NewBits(field.Spec{BitSize: n}, nil)
			require.NoError(t, err)
			fields = append(fields, f)
			total += n
		}
		out := Pack(3, fields)
		assert.Len(t, out, (total+7)/8, "%v", set)
		assert.Equal(t, byte(3), out[0])
		for _, v := range out[1:] {
			assert.Zero(t, v)
		}
	}
}

func TestHexLinesSwapsHalfWords(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, []string{
		"05060708", "01020304",
		"00000000", "09000000",
	}, HexLines(in))
}

func TestModifierSizes(t *testing.T) {
	s, r := newSkeletonAndRate(t)
	fl := &testFlow{}
	inc := fl.add(t, TypeIncrement, Options{"id": 2})
	sum := fl.add(t, TypeChecksum, Options{"id": 3})
	fcs := fl.add(t, TypeEthernetFCS, Options{"id": 4})

	assert.Len(t, s.Bytes(), 72)
	assert.Len(t, r.Bytes(), 8)
	assert.Len(t, inc.Bytes(), 16)
	assert.Len(t, sum.Bytes(), 8)
	assert.Equal(t, []byte{4}, fcs.Bytes())
	for _, m := range []Modifier{s, r, inc, sum, fcs} {
		assert.Len(t, m.Bytes(), packedLen(m), m.Type())
	}
	assert.Equal(t, "-- Ethernet FCS\n--------------------\n-- Identifier: 4\n00000000\n04000000", fcs.ConfigData())
}

// packedLen is the byte length of the identifier plus the in-config fields.
func packedLen(m Modifier) int {
	bits := 8
	for _, f := range m.Fields() {
		if f.InConfig() {
			bits += f.BitSize()
		}
	}
	return (bits + 7) / 8
}

func TestIncrementDefaults(t *testing.T) {
	fl := &testFlow{}
	m := fl.add(t, TypeIncrement, Options{"id": 2})
	// id, min=0, max=255 (LE field, MSB first in stream), skip=0, mode+7 bits, step=1, offset=0
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x01}, m.Bytes()[:10])
	assert.Equal(t, "Increment", mustEnum(t, m, "mode").Value())
}

func mustEnum(t *testing.T, m Modifier, id string) *field.Enum {
	t.Helper()
	f, ok := m.Field(id).(*field.Enum)
	require.True(t, ok, id)
	return f
}

func mustUnsigned(t *testing.T, m Modifier, id string) *field.Unsigned {
	t.Helper()
	f, ok := m.Field(id).(*field.Unsigned)
	require.True(t, ok, id)
	return f
}

func TestRegistry(t *testing.T) {
	info, ok := Lookup(TypeRate)
	require.True(t, ok)
	assert.True(t, info.Mandatory)
	info, ok = Lookup(TypeChecksum)
	require.True(t, ok)
	assert.False(t, info.Mandatory)

	_, ok = Lookup("nope")
	assert.False(t, ok)
	m, ok, err := New("nope", &testFlow{}, Options{"id": 1})
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Nil(t, m)

	err = Register(TypeRate, false, NewRate)
	var ee *ExtendError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "the modifier type rate is already registered with another flag or constructor", err.Error())
	assert.Error(t, Register(TypeChecksum, false, NewIncrement))
	assert.Panics(t, func() { MustRegister(TypeChecksum, true, NewChecksum) })
	assert.NotPanics(t, func() { MustRegister(TypeChecksum, false, NewChecksum) }, "same identity")
	info, ok = Lookup(TypeChecksum)
	require.True(t, ok)
	assert.False(t, info.Mandatory)
	assert.Error(t, Register("", false, NewChecksum))

	assert.Subset(t, Types(false), []string{TypeChecksum, TypeEthernetFCS, TypeIncrement, TypeRate, TypeSkeletonSender})
	assert.Subset(t, Types(true), []string{TypeRate, TypeSkeletonSender})
	assert.NotContains(t, Types(true), TypeChecksum)
}

func TestIdentifierValidation(t *testing.T) {
	for _, opts := range []Options{{}, {"id": "7"}, {"id": 7.5}, {"id": 256}, {"id": -1}} {
		_, ok, err := New(TypeChecksum, &testFlow{}, opts)
		require.True(t, ok)
		require.Error(t, err, "%v", opts)
		assert.True(t, errors.Is(err, ErrInvalidID))
	}
	m, _, err := New(TypeChecksum, &testFlow{}, Options{"id": float64(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, m.ID())
}

func TestMandatoryCannotBeDisabled(t *testing.T) {
	s, _ := newSkeletonAndRate(t)
	require.True(t, s.Enabled())

	err := s.SetEnabled(false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMandatory))
	assert.Equal(t, "Skeleton sender (0): Mandatory modifiers may not be disabled", err.Error())
	assert.True(t, s.Enabled())
	assert.NoError(t, s.SetEnabled(true))
}

func TestEnabledChangedSender(t *testing.T) {
	fl := &testFlow{}
	m := fl.add(t, TypeChecksum, Options{"id": 3})
	assert.False(t, m.Enabled())

	var got []Modifier
	m.EnabledChanged().Subscribe(func(s Modifier) { got = append(got, s) })
	require.NoError(t, m.SetEnabled(true))
	require.NoError(t, m.SetEnabled(true))
	require.Len(t, got, 1)
	assert.IsType(t, &Checksum{}, got[0])

	m.Reset()
	assert.False(t, m.Enabled())
	assert.Len(t, got, 2)
}

func TestDuplicateFieldID(t *testing.T) {
	b, err := NewBase(nil, Info{Tag: "x"}, "X", "", Options{"id": 1})
	require.NoError(t, err)
	f1 := namedByte(t, "a")
	f2 := namedByte(t, "a")
	err = b.AddFields(f1, f2)
	assert.True(t, errors.Is(err, ErrDuplicateID))
	assert.Empty(t, b.Fields())

	require.NoError(t, b.AddFields(f1))
	assert.True(t, errors.Is(b.AddFields(f2), ErrDuplicateID))
	assert.NoError(t, b.AddFields(field.Reserved(3), field.Reserved(5)))
	assert.Len(t, b.Fields(), 3)
}

func namedByte(t *testing.T, id string) field.Field {
	t.Helper()
	f, err := field.NewUnsigned(field.UnsignedSpec{Spec: field.Spec{ID: id, BitSize: 8}})
	require.NoError(t, err)
	return f
}

func TestSkeletonSizeFollowsPayload(t *testing.T) {
	s, _ := newSkeletonAndRate(t)
	assert.Equal(t, uint64(64), s.Size().Value())

	require.NoError(t, s.Data().SetUserValue(make([]byte, 100)))
	assert.Equal(t, uint64(100), s.Size().Value())
	assert.Equal(t, 100*8, s.Data().BitSize())

	s.Reset()
	assert.Equal(t, uint64(64), s.Size().Value())
}

func TestRateRequiresSkeleton(t *testing.T) {
	_, ok, err := New(TypeRate, &testFlow{}, Options{"id": 1})
	require.True(t, ok)
	assert.True(t, errors.Is(err, ErrDependency))

	_, _, err = New(TypeRate, nil, Options{"id": 1})
	assert.True(t, errors.Is(err, ErrDependency))
}

func TestRateOptions(t *testing.T) {
	fl := &testFlow{}
	fl.add(t, TypeSkeletonSender, Options{"id": 0})
	r := fl.add(t, TypeRate, Options{"id": 1, "line_rate": 1000, "min_gap": "20"}).(*Rate)
	assert.Equal(t, uint64(1000), r.RateField().Maximum())
	assert.Equal(t, uint64(1000), r.RateField().Value())
	assert.Equal(t, uint64(20), r.GapField().Value())

	_, _, err := New(TypeRate, fl, Options{"id": 5, "line_rate": 0})
	assert.True(t, errors.Is(err, ErrOptions))
}

func TestRateFromUserRate(t *testing.T) {
	_, r := newSkeletonAndRate(t)
	rate, gap := r.RateField(), r.GapField()

	require.NoError(t, rate.SetUserValue(5000))
	rate.SetAuto(false)

	assert.False(t, rate.Auto())
	assert.True(t, gap.Auto())
	assert.Equal(t, uint64(5000), rate.Value())
	// (64+12+1)/5000*10000 = 154 bytes on the wire, gap = 154-77+12
	assert.Equal(t, uint64(89), gap.Value())
}

func TestRateFromUserGap(t *testing.T) {
	_, r := newSkeletonAndRate(t)
	rate, gap := r.RateField(), r.GapField()

	require.NoError(t, gap.SetUserValue(166))
	gap.SetAuto(false)

	assert.True(t, rate.Auto())
	assert.False(t, gap.Auto())
	assert.Equal(t, uint64(166), gap.Value())
	// 77*10000/(65+166) rounds to 3333
	assert.Equal(t, uint64(3333), rate.Value())

	// both automatic again: independent defaults
	gap.SetAuto(true)
	assert.Equal(t, uint64(10000), rate.Value())
	assert.Equal(t, uint64(12), gap.Value())
}

func TestRateAlternatesAuthority(t *testing.T) {
	_, r := newSkeletonAndRate(t)
	rate, gap := r.RateField(), r.GapField()

	require.NoError(t, rate.SetUserValue(5000))
	rate.SetAuto(false)
	require.NoError(t, gap.SetUserValue(166))
	gap.SetAuto(false)

	assert.True(t, rate.Auto())
	assert.False(t, gap.Auto())
	assert.Equal(t, uint64(3333), rate.Value())
	assert.Equal(t, uint64(166), gap.Value())
}

func TestRateFollowsPacketSize(t *testing.T) {
	s, r := newSkeletonAndRate(t)
	require.NoError(t, r.RateField().SetUserValue(5000))
	r.RateField().SetAuto(false)

	require.NoError(t, s.Data().SetUserValue(make([]byte, 128)))
	assert.Equal(t, uint64(128), s.Size().Value())
	// (128+13)/5000*10000 = 282, gap = 282-141+12
	assert.Equal(t, uint64(153), r.GapField().Value())
	assert.Equal(t, uint64(5000), r.RateField().Value())
}

func TestStateRestore(t *testing.T) {
	fl := &testFlow{}
	src := fl.add(t, TypeIncrement, Options{"id": 2})
	require.NoError(t, src.SetEnabled(true))
	upper := mustUnsigned(t, src, "max")
	require.NoError(t, upper.SetUserValue(1000))
	upper.SetAuto(false)
	require.NoError(t, mustEnum(t, src, "mode").SetAutoValue("Decrement"))

	s := src.State()
	assert.Equal(t, TypeIncrement, s.Type)
	assert.Len(t, s.Fields, 6, "reserved ranges are not persisted")

	dst := (&testFlow{}).add(t, TypeIncrement, Options{"id": 2})
	require.NoError(t, dst.Restore(s))
	assert.True(t, dst.Enabled())
	assert.Equal(t, uint64(1000), mustUnsigned(t, dst, "max").Value())
	assert.Equal(t, "Decrement", mustEnum(t, dst, "mode").Value())
	assert.Equal(t, src.Bytes(), dst.Bytes())

	s.Fields = append(s.Fields, field.State{ID: "gone", Type: field.TypeUnsigned, BitSize: 8})
	s.Fields[0].Type = field.TypeEnum
	err := dst.Restore(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, field.ErrIncompatibleType))

	other := (&testFlow{}).add(t, TypeChecksum, Options{"id": 2})
	assert.True(t, errors.Is(other.Restore(s), ErrIncompatible))
}

func TestResetModifier(t *testing.T) {
	fl := &testFlow{}
	m := fl.add(t, TypeChecksum, Options{"id": 3})
	require.NoError(t, m.SetEnabled(true))
	end := mustUnsigned(t, m, "end-offset")
	require.NoError(t, end.SetUserValue(10))
	end.SetAuto(false)

	m.Reset()
	assert.False(t, m.Enabled())
	assert.True(t, end.Auto())
	assert.Equal(t, uint64(2047), end.Value())
}
