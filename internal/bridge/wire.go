package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/vexlang/vex/internal/evaluator"
)

// Arrays at least this long, numeric and flat, cross the wire as packed
// binary instead of JSON elements.
const ndarrayThreshold = 64

// encodeValue lowers a runtime value to the wire's JSON shape.
func encodeValue(obj evaluator.Object) (interface{}, error) {
	switch v := obj.(type) {
	case *evaluator.Integer:
		return v.Value, nil
	case *evaluator.Float:
		return v.Value, nil
	case *evaluator.Boolean:
		return v.Value, nil
	case *evaluator.String:
		return v.Value, nil
	case *evaluator.Void:
		return nil, nil
	case *evaluator.Array:
		if packed, ok, err := encodeNDArray(v); ok || err != nil {
			return packed, err
		}
		elements := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			enc, err := encodeValue(el)
			if err != nil {
				return nil, err
			}
			elements[i] = enc
		}
		return elements, nil
	}
	return nil, fmt.Errorf("cannot send %s across the bridge", obj.Type())
}

// encodeNDArray packs a long flat numeric array into the binary ndarray
// form: dtype, shape, and raw little-endian element bytes.
func encodeNDArray(arr *evaluator.Array) (interface{}, bool, error) {
	if len(arr.Elements) < ndarrayThreshold {
		return nil, false, nil
	}

	allInt := true
	for _, el := range arr.Elements {
		switch el.(type) {
		case *evaluator.Integer:
		case *evaluator.Float:
			allInt = false
		default:
			return nil, false, nil
		}
	}

	builder := funbit.NewBuilder()
	if allInt {
		for _, el := range arr.Elements {
			funbit.AddInteger(builder, el.(*evaluator.Integer).Value,
				funbit.WithSize(64), funbit.WithSigned(true), funbit.WithEndianness("little"))
		}
	} else {
		for _, el := range arr.Elements {
			var f float64
			switch v := el.(type) {
			case *evaluator.Integer:
				f = float64(v.Value)
			case *evaluator.Float:
				f = v.Value
			}
			funbit.AddFloat(builder, f, funbit.WithSize(64), funbit.WithEndianness("little"))
		}
	}

	bits, err := builder.Build()
	if err != nil {
		return nil, false, fmt.Errorf("pack ndarray: %w", err)
	}

	dtype := "f64"
	if allInt {
		dtype = "i64"
	}
	return map[string]interface{}{
		"__numpy_array__": map[string]interface{}{
			"dtype": dtype,
			"shape": []int{len(arr.Elements)},
			"data":  base64.StdEncoding.EncodeToString(bits.ToBytes()),
		},
	}, true, nil
}

// decodeValue lifts a wire value back into a runtime value. json.Number is
// required on the decoder so integers survive the trip.
func decodeValue(raw interface{}) (evaluator.Object, error) {
	switch v := raw.(type) {
	case nil:
		return evaluator.VOID, nil
	case bool:
		if v {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case string:
		return &evaluator.String{Value: v}, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return &evaluator.Integer{Value: i}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number on wire: %q", v.String())
		}
		return &evaluator.Float{Value: f}, nil
	case float64:
		if v == float64(int64(v)) {
			return &evaluator.Integer{Value: int64(v)}, nil
		}
		return &evaluator.Float{Value: v}, nil
	case []interface{}:
		elements := make([]evaluator.Object, len(v))
		for i, el := range v {
			dec, err := decodeValue(el)
			if err != nil {
				return nil, err
			}
			elements[i] = dec
		}
		return &evaluator.Array{Elements: elements}, nil
	case map[string]interface{}:
		if inner, ok := v["__numpy_array__"].(map[string]interface{}); ok {
			return decodeNDArray(inner)
		}
		if b64, ok := v["__bytes__"].(string); ok {
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, fmt.Errorf("bad bytes payload: %w", err)
			}
			return &evaluator.String{Value: string(data)}, nil
		}
		return nil, fmt.Errorf("unrecognized object on wire")
	}
	return nil, fmt.Errorf("unrecognized wire value: %T", raw)
}

func decodeNDArray(v map[string]interface{}) (evaluator.Object, error) {
	dtype, _ := v["dtype"].(string)
	b64, _ := v["data"].(string)
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("bad ndarray payload: %w", err)
	}

	count := 0
	switch dtype {
	case "f64", "i64":
		if len(raw)%8 != 0 {
			return nil, fmt.Errorf("ndarray payload not a multiple of element size")
		}
		count = len(raw) / 8
	default:
		return nil, fmt.Errorf("unsupported ndarray dtype: %s", dtype)
	}

	bits := funbit.NewBitStringFromBytes(raw)
	matcher := funbit.NewMatcher()

	elements := make([]evaluator.Object, count)
	if dtype == "i64" {
		values := make([]int64, count)
		for i := range values {
			funbit.Integer(matcher, &values[i],
				funbit.WithSize(64), funbit.WithSigned(true), funbit.WithEndianness("little"))
		}
		if _, err := matcher.Match(bits); err != nil {
			return nil, fmt.Errorf("unpack ndarray: %w", err)
		}
		for i, val := range values {
			elements[i] = &evaluator.Integer{Value: val}
		}
	} else {
		values := make([]float64, count)
		for i := range values {
			funbit.Float(matcher, &values[i],
				funbit.WithSize(64), funbit.WithEndianness("little"))
		}
		if _, err := matcher.Match(bits); err != nil {
			return nil, fmt.Errorf("unpack ndarray: %w", err)
		}
		for i, val := range values {
			elements[i] = &evaluator.Float{Value: val}
		}
	}

	// Only flat shapes are produced today. Nested shapes would be re-folded
	// here if a specialist ever sends one.
	return &evaluator.Array{Elements: elements}, nil
}
