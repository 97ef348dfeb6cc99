package desktop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStrategy(t *testing.T) {
	tests := []struct {
		name    string
		in      Strategy
		goos    string
		version string
		want    Strategy
	}{
		{"Ventura uses datastore", StrategyAuto, "darwin", "13.6.1", StrategyDatastore},
		{"Monterey uses datastore", StrategyAuto, "darwin", "12.7", StrategyDatastore},
		{"Sonoma uses private API", StrategyAuto, "darwin", "14.0", StrategyPrivateAPI},
		{"Sequoia uses private API", StrategyAuto, "darwin", "15.1", StrategyPrivateAPI},
		{"Bare major version", StrategyAuto, "darwin", "15", StrategyPrivateAPI},
		{"Unreadable version", StrategyAuto, "darwin", "", StrategyPrivateAPI},
		{"Linux has no spaces", StrategyAuto, "linux", "", StrategyNone},
		{"Explicit choice wins", StrategyAutomation, "darwin", "15.1", StrategyAutomation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveStrategy(tt.in, tt.goos, tt.version))
		})
	}
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, StrategyDatastore, ParseStrategy("datastore"))
	assert.Equal(t, StrategyPrivateAPI, ParseStrategy("private_api"))
	assert.Equal(t, StrategyAuto, ParseStrategy(""))
	assert.Equal(t, StrategyAuto, ParseStrategy("bogus"))
}

func TestNewPropagator_Explicit(t *testing.T) {
	opts := Options{Setter: new(MockSetter), Runner: &fakeRunner{}, DatastorePath: "/tmp/x.db"}

	p, err := NewPropagator(StrategyDatastore, opts)
	require.NoError(t, err)
	assert.Equal(t, "datastore", p.Name())

	p, err = NewPropagator(StrategyAutomation, opts)
	require.NoError(t, err)
	assert.Equal(t, "automation", p.Name())

	p, err = NewPropagator(StrategyNone, opts)
	require.NoError(t, err)
	assert.Equal(t, "none", p.Name())

	_, err = NewPropagator(Strategy("bogus"), opts)
	assert.Error(t, err)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "3 spaces updated", Result{Spaces: 3}.String())
	assert.False(t, Result{Spaces: 3}.Partial())
	assert.False(t, Result{Failures: []SpaceFailure{{Space: "1"}}}.Partial())
}

func TestAppleScriptString(t *testing.T) {
	assert.Equal(t, `"/Users/me/My \"Pics\"/a.png"`, appleScriptString(`/Users/me/My "Pics"/a.png`))
	assert.Equal(t, `"C:\\x"`, appleScriptString(`C:\x`))
}
