package formula

// builtinFunctions lists every function NewDefaultRegistry installs
func builtinFunctions() []FunctionDescriptor {
	return []FunctionDescriptor{
		// information
		{Name: "ISREF", MinParams: 1, MaxParams: 1, Calculate: ISREF, NeedsReference: true},
		{Name: "ISERROR", MinParams: 1, MaxParams: 1, Calculate: ISERROR},
		{Name: "ISBLANK", MinParams: 1, MaxParams: 1, Calculate: ISBLANK},
		{Name: "ISNUMBER", MinParams: 1, MaxParams: 1, Calculate: ISNUMBER},
		{Name: "ISTEXT", MinParams: 1, MaxParams: 1, Calculate: ISTEXT},

		// statistical
		{Name: "AVERAGE", MinParams: 1, MaxParams: 255, Calculate: AVERAGE},
		{Name: "SUM", MinParams: 1, MaxParams: 255, Calculate: SUM},
		{Name: "COUNT", MinParams: 1, MaxParams: 255, Calculate: COUNT},
		{Name: "COUNTA", MinParams: 1, MaxParams: 255, Calculate: COUNTA},
		{Name: "MAX", MinParams: 1, MaxParams: 255, Calculate: MAX},
		{Name: "MIN", MinParams: 1, MaxParams: 255, Calculate: MIN},

		// math
		{Name: "ABS", MinParams: 1, MaxParams: 1, Calculate: ABS},
		{Name: "ROUND", MinParams: 1, MaxParams: 2, Calculate: ROUND},

		// lookup
		{Name: "DROP", MinParams: 2, MaxParams: 3, Calculate: DROP},
	}
}

// optionalArg returns args[i], or def when the caller left it out
func optionalArg(args []Value, i int, def Value) Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return def
}

// firstElement narrows an array to its top-left element
func firstElement(v Value) Value {
	if a, ok := v.(*Array); ok {
		return a.Get(0, 0)
	}
	return v
}
