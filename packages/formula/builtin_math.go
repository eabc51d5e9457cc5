package formula

import "math"

// ABS returns the absolute value, element-wise over arrays
func ABS(args ...Value) Value {
	return Broadcast(func(args ...Value) Value {
		num, err := CoerceToNumber(args[0])
		if err != nil {
			return *err
		}
		return Number(math.Abs(float64(num)))
	}, args[0])
}

// ROUND rounds half away from zero to the given number of digits (default
// 0). negative digits round to the left of the decimal point.
func ROUND(args ...Value) Value {
	digits := optionalArg(args, 1, Number(0))
	return Broadcast(func(args ...Value) Value {
		if err, ok := FirstError(args...); ok {
			return err
		}
		num, err := CoerceToNumber(args[0])
		if err != nil {
			return *err
		}
		places, err := CoerceToNumber(args[1])
		if err != nil {
			return *err
		}

		multiplier := math.Pow(10, math.Trunc(float64(places)))
		return finite(math.Round(float64(num)*multiplier) / multiplier)
	}, args[0], digits)
}
