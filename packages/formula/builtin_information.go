package formula

// ISREF reports whether its argument was written as a cell or range
// reference that resolved to a real location. it never returns an error.
func ISREF(args ...Value) Value {
	return Boolean(IsReference(args[0]))
}

// ISERROR is TRUE for any error value, element-wise over arrays
func ISERROR(args ...Value) Value {
	return isKind(args[0], KindError)
}

// ISBLANK is TRUE for empty cells, element-wise over arrays
func ISBLANK(args ...Value) Value {
	return isKind(args[0], KindNull)
}

// ISNUMBER is TRUE for numbers, element-wise over arrays
func ISNUMBER(args ...Value) Value {
	return isKind(args[0], KindNumber)
}

// ISTEXT is TRUE for text, element-wise over arrays
func ISTEXT(args ...Value) Value {
	return isKind(args[0], KindText)
}

func isKind(v Value, kind ValueKind) Value {
	return Broadcast(func(args ...Value) Value {
		return Boolean(args[0].Kind() == kind)
	}, v)
}
