package kabsch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parmeggiani-Lab/elfin/geom"
)

// Fixture ported verbatim from original_source/cpp/core/Kabsch.cpp:_testKabsch.
var fixtureA = geom.Path{
	{X: 4.7008892286345, Y: 42.938597096873, Z: 14.4318130193692},
	{X: -20.3679194392227, Y: 27.5712678608402, Z: -12.1390617339732},
	{X: 24.4692807074156, Y: -1.32083675968276, Z: 31.1580458282477},
	{X: -31.1044984967455, Y: -6.41414114190809, Z: 3.28255887994549},
	{X: 18.6775433365315, Y: -5.32162505701938, Z: -14.9272896423117},
	{X: -31.648884426273, Y: -19.3650527983443, Z: 43.9001561999887},
	{X: -13.1515403509663, Y: 0.850865538112699, Z: 37.5942811492984},
	{X: 12.561856072969, Y: 1.07715641721097, Z: 5.01563428984222},
	{X: 28.0227435151377, Y: 31.7627708322262, Z: 12.2475086001227},
	{X: -41.8874231134215, Y: 29.4831416883453, Z: 8.70447045314168},
}

var fixtureB = geom.Path{
	{X: -29.2257707266972, Y: -18.8897713349587, Z: 9.48960740086143},
	{X: -19.8753669720509, Y: 42.3379642103244, Z: -23.7788252219155},
	{X: -2.90766514824093, Y: -6.9792608670416, Z: 10.2843089382083},
	{X: -26.9511839788441, Y: -31.5183679875864, Z: 21.1215780433683},
	{X: 34.4308792695389, Y: 40.4880968679893, Z: -27.825326598276},
	{X: -30.5235710432951, Y: 47.9748378356085, Z: -38.2582349144194},
	{X: -27.4078219027601, Y: -6.11300268738968, Z: -20.3324126781673},
	{X: -32.9291952852141, Y: -38.8880776559401, Z: -18.1221698074118},
	{X: -27.2335702183446, Y: -24.1935304087933, Z: -7.58332402861928},
	{X: -6.43013158961009, Y: -9.12801538874479, Z: 0.785828466111815},
}

var fixtureRot = geom.Mat3{Rows: [3]geom.Vec3{
	{X: 0.523673403299203, Y: -0.276948392922051, Z: -0.805646171923458},
	{X: -0.793788382691122, Y: -0.501965361762521, Z: -0.343410511043611},
	{X: -0.309299482996081, Y: 0.819347522879342, Z: -0.482704326238996},
}}

var fixtureTran = geom.Vec3{X: -1.08234396236629, Y: 5.08395199432057, Z: -13.0170407784248}

func TestSuperposeRotationAndTranslation(t *testing.T) {
	_, rot, tran, ok := Superpose(fixtureA, fixtureB, Full)
	require.True(t, ok, "Superpose reported failure on well-formed input")
	for i := 0; i < 3; i++ {
		assert.True(t, rot.Rows[i].Approx(fixtureRot.Rows[i], 1e-6), "rotation row %d: got %v want %v", i, rot.Rows[i], fixtureRot.Rows[i])
	}
	assert.True(t, tran.Approx(fixtureTran, 1e-6), "translation: got %v want %v", tran, fixtureTran)
}

func TestResampleChangesLength(t *testing.T) {
	aFewer := make(geom.Path, 0, len(fixtureA)-1)
	aFewer = append(aFewer, fixtureA[:len(fixtureA)/2]...)
	aFewer = append(aFewer, fixtureA[len(fixtureA)/2+1:]...)
	require.NotEqual(t, len(fixtureB), len(aFewer), "fixture setup: aFewer and fixtureB must start with different lengths")

	resampled := Resample(aFewer, fixtureB)
	assert.Equal(t, len(aFewer), len(resampled))
}

func TestScoreABMatchesFixture(t *testing.T) {
	score := Score(fixtureA, fixtureB)
	assert.InDelta(t, 7796.9331054688, score, 1e-2)
}

func TestScoreSelfIsZero(t *testing.T) {
	score := Score(fixtureA, fixtureA)
	assert.LessOrEqual(t, score, 1e-6)
}

func TestScoreShiftedSelfIsZero(t *testing.T) {
	shifted := make(geom.Path, len(fixtureB))
	shift := geom.Vec3{X: -10, Y: 20, Z: 30}
	for i, p := range fixtureB {
		shifted[i] = p.Add(shift)
	}
	score := Score(shifted, fixtureB)
	assert.LessOrEqual(t, score, 1e-6)
}

func TestScoreSubsampledMatchesFixture(t *testing.T) {
	mid := len(fixtureB) / 2
	sub := make(geom.Path, 0, len(fixtureB)-1)
	sub = append(sub, fixtureB[:mid]...)
	sub = append(sub, fixtureB[mid+1:]...)

	score := Score(sub, fixtureB)
	assert.InDelta(t, 650.2928466797, score, 1e-2)
}
