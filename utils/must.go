package utils

// Must panics on err. For setup code where an error means a programming mistake.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
