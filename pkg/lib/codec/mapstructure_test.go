package codec

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/operator-framework/boxopt/pkg/formula"
)

func TestBigIntHookFunc(t *testing.T) {
	type args struct {
		fromType, toType reflect.Type
		data             interface{}
	}
	type expected struct {
		converted interface{}
		err       bool
	}
	tests := []struct {
		description string
		args        args
		expected    expected
	}{
		{
			description: "Unrelated/Passthrough",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   reflect.TypeOf(""),
				data:     "7",
			},
			expected: expected{
				converted: "7",
			},
		},
		{
			description: "Int/Converted",
			args: args{
				fromType: reflect.TypeOf(0),
				toType:   bigIntType,
				data:     7,
			},
			expected: expected{
				converted: big.NewInt(7),
			},
		},
		{
			description: "Uint64/Converted",
			args: args{
				fromType: reflect.TypeOf(uint64(0)),
				toType:   bigIntType,
				data:     uint64(18446744073709551615),
			},
			expected: expected{
				converted: new(big.Int).SetUint64(18446744073709551615),
			},
		},
		{
			description: "String/Converted",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   bigIntType,
				data:     "340282366920938463463374607431768211455",
			},
			expected: expected{
				converted: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
			},
		},
		{
			description: "String/Invalid",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   bigIntType,
				data:     "seven",
			},
			expected: expected{
				err: true,
			},
		},
		{
			description: "Float/Lossy",
			args: args{
				fromType: reflect.TypeOf(float64(0)),
				toType:   bigIntType,
				data:     float64(1e20),
			},
			expected: expected{
				err: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			converted, err := bigIntHookFunc(tt.args.fromType, tt.args.toType, tt.args.data)
			if tt.expected.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if want, ok := tt.expected.converted.(*big.Int); ok {
				require.Equal(t, 0, want.Cmp(converted.(*big.Int)))
				return
			}
			require.Equal(t, tt.expected.converted, converted)
		})
	}
}

func TestDirectionHookFunc(t *testing.T) {
	d, err := directionHookFunc(reflect.TypeOf(""), directionType, "min")
	require.NoError(t, err)
	require.Equal(t, formula.Minimize, d)

	d, err = directionHookFunc(reflect.TypeOf(0), directionType, 1)
	require.NoError(t, err)
	require.Equal(t, formula.Maximize, d)

	d, err = directionHookFunc(reflect.TypeOf(0), directionType, 0)
	require.NoError(t, err)
	require.Equal(t, formula.Minimize, d)

	_, err = directionHookFunc(reflect.TypeOf(""), directionType, "up")
	require.Error(t, err)
}

func TestBitOrderHookFunc(t *testing.T) {
	o, err := bitOrderHookFunc(reflect.TypeOf(""), bitOrderType, "lsb-first")
	require.NoError(t, err)
	require.Equal(t, formula.LSBFirst, o)

	o, err = bitOrderHookFunc(reflect.TypeOf(0), bitOrderType, 1)
	require.NoError(t, err)
	require.Equal(t, 1, o)
}
