package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectConfigInstances(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Counts[Transformer] = 2
	cfg.Counts[OutletSub] = 2
	cfg.SubCounts[1] = 3

	refs := cfg.Instances(Transformer)
	require.Len(t, refs, 2)
	assert.Nil(t, refs[0].Sub)
	assert.Equal(t, 2, refs[1].Instance)

	nested := cfg.Instances(OutletSub)
	// 实例 1 有三个子实例，实例 2 默认一个
	require.Len(t, nested, 4)
	assert.Equal(t, 3, nested[2].SubIndex())
	assert.Equal(t, 2, nested[3].Instance)
	assert.Equal(t, 1, nested[3].SubIndex())

	assert.Empty(t, cfg.Instances(Feeder))
}

func TestProjectConfigValidate(t *testing.T) {
	cfg := NewProjectConfig()
	cfg.Counts[Outlet] = -1
	assert.Error(t, cfg.Validate())

	cfg = NewProjectConfig()
	cfg.Counts[OutletSub] = 1
	cfg.SubCounts[2] = 4
	assert.Error(t, cfg.Validate(), "sub count for an instance beyond the nested count")

	cfg.SubCounts = map[int]int{1: 4}
	assert.NoError(t, cfg.Validate())
}

func TestMasterAndString(t *testing.T) {
	m := Master(OutletSub)
	assert.True(t, m.IsMaster())
	assert.Equal(t, "Unterabgang 1.1", m.String())
	assert.Equal(t, "Transformator 1", Master(Transformer).String())
	assert.True(t, m.Equal(NewSubInstanceRef(OutletSub, 1, 1)))
	assert.False(t, m.Equal(NewSubInstanceRef(OutletSub, 1, 2)))
}

func TestResolveKind(t *testing.T) {
	special := SpecialQuestions{Voltage: "Versorgungsspannung?", HarmonicOrder: "Maximale Ordnung der Oberschwingungen"}

	assert.Equal(t, KindVoltage, ResolveKind(" Versorgungsspannung ", special))
	assert.Equal(t, KindHarmonicOrder, ResolveKind("Maximale Ordnung der Oberschwingungen?", special))
	assert.Equal(t, KindSubstring, ResolveKind("Messgenauigkeit", special))
	assert.Equal(t, KindSubstring, ResolveKind("Versorgungsspannung", SpecialQuestions{}))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("outlet_sub")
	require.NoError(t, err)
	assert.True(t, c.Nested())
	assert.False(t, Outlet.Nested())

	_, err = ParseCategory("pump")
	assert.Error(t, err)
}

func TestProjectConfigNormalize(t *testing.T) {
	cfg := ProjectConfig{Counts: map[Category]int{OutletSub: 1}, SubCounts: map[int]int{1: 2, 3: 5}}
	cfg.Normalize()
	assert.Equal(t, map[int]int{1: 2}, cfg.SubCounts)
	assert.NoError(t, cfg.Validate())
}
