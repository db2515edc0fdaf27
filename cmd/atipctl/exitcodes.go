package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration could not be loaded
	ExitNotFound    = 3 // Requested author does not exist
	ExitChecksFail  = 4 // At least one API debug check failed
)
