package utils

// GetOrDefault returns the value if the pointer is not nil, otherwise returns the default value
func GetOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr == nil {
		return defaultVal
	}
	return *ptr
}

func StringPtr(s string) *string {
	return &s
}

// StringPtrNilIfEmpty maps "" to nil, anything else to a pointer
func StringPtrNilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
