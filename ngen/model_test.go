package ngen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muir/ndecor"
)

func TestConventionModel(t *testing.T) {
	m := conventionModel(cachingDef)
	assert.Equal(t, cachingDef, m.Decorator)
	assert.Equal(t, FuncRef{
		ImportPath: "example.com/billing/obs",
		Name:       "NewCachingDeco",
	}, m.Constructor)
	require.Len(t, m.Params, 1)
	assert.True(t, m.Params[0].Wrapped)
	assert.NoError(t, m.validate())
	assert.True(t, m.hasWrapped())
}

func TestModelValidate(t *testing.T) {
	cases := []struct {
		name    string
		model   Model
		wantErr string
	}{
		{
			name: "valid",
			model: Model{
				Constructor: FuncRef{Name: "NewThing"},
				Params:      []Param{WrappedParam(), ArgParam(0)},
			},
		},
		{
			name:    "no constructor",
			model:   Model{Params: []Param{WrappedParam()}},
			wantErr: "model has no constructor name",
		},
		{
			name: "two wrapped",
			model: Model{
				Constructor: FuncRef{Name: "NewThing"},
				Params:      []Param{WrappedParam(), WrappedParam()},
			},
			wantErr: "model has 2 wrapped parameters",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.model.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestModelHasWrapped(t *testing.T) {
	with := Model{Params: []Param{ArgParam(0), WrappedParam()}}
	without := Model{Params: []Param{ArgParam(0), DepParam(cacheDef, ArgParam(0))}}
	assert.True(t, with.hasWrapped())
	assert.False(t, without.hasWrapped())
}

func TestCloseParamTypeArg(t *testing.T) {
	got, err := closeParam(ArgParam(0), []ndecor.TypeRef{custRef})
	require.NoError(t, err)
	assert.True(t, custRef.Equal(got))
}

func TestCloseParamTypeArgOutOfRange(t *testing.T) {
	_, err := closeParam(ArgParam(2), []ndecor.TypeRef{custRef})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type argument 2 but the implementation has 1")
}

func TestCloseParamDependency(t *testing.T) {
	got, err := closeParam(DepParam(cacheDef, ArgParam(0)), []ndecor.TypeRef{custRef})
	require.NoError(t, err)
	assert.True(t, ndecor.Ref(cacheDef, custRef).Equal(got))
	assert.Equal(t, "obs.Cache[billing.Customer]", got.Display())
}

func TestCloseParamDependencyPropagatesError(t *testing.T) {
	_, err := closeParam(DepParam(cacheDef, ArgParam(1)), []ndecor.TypeRef{custRef})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type argument 1 but the implementation has 1")
}
