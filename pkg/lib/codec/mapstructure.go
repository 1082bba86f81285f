package codec

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/operator-framework/boxopt/pkg/formula"
)

var (
	bigIntType    = reflect.TypeOf((*big.Int)(nil))
	directionType = reflect.TypeOf(formula.Direction(0))
	bitOrderType  = reflect.TypeOf(formula.BitOrder(0))
)

// BigIntHookFunc decodes integers and decimal strings into *big.Int.
// Values that YAML could only represent as floats are rejected since
// they may have lost precision; such values must be quoted.
func BigIntHookFunc() mapstructure.DecodeHookFunc {
	return bigIntHookFunc
}

func bigIntHookFunc(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != bigIntType {
		return data, nil
	}

	switch f.Kind() {
	case reflect.String:
		v, ok := new(big.Int).SetString(data.(string), 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", data)
		}
		return v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(reflect.ValueOf(data).Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(reflect.ValueOf(data).Uint()), nil
	case reflect.Float32, reflect.Float64:
		fv := reflect.ValueOf(data).Float()
		if fv != math.Trunc(fv) || math.Abs(fv) > 1<<53 {
			return nil, fmt.Errorf("integer %v is not exactly representable, quote it", fv)
		}
		return big.NewInt(int64(fv)), nil
	default:
		return data, nil
	}
}

// DirectionHookFunc decodes direction names and the 1/0 flags used by
// the front end into formula.Direction.
func DirectionHookFunc() mapstructure.DecodeHookFunc {
	return directionHookFunc
}

func directionHookFunc(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != directionType {
		return data, nil
	}

	switch f.Kind() {
	case reflect.String:
		return formula.ParseDirection(data.(string))
	case reflect.Int, reflect.Int64:
		return formula.ParseDirection(strconv.FormatInt(reflect.ValueOf(data).Int(), 10))
	case reflect.Bool:
		if data.(bool) {
			return formula.Maximize, nil
		}
		return formula.Minimize, nil
	default:
		return data, nil
	}
}

// BitOrderHookFunc decodes bit order names into formula.BitOrder.
func BitOrderHookFunc() mapstructure.DecodeHookFunc {
	return bitOrderHookFunc
}

func bitOrderHookFunc(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != bitOrderType || f.Kind() != reflect.String {
		return data, nil
	}
	return formula.ParseBitOrder(data.(string))
}
