package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Gallery errors
	ErrCategoryNotFound = fmt.Errorf("category not found")
	ErrImageNotFound    = fmt.Errorf("image not found")
	ErrEmptySearch      = fmt.Errorf("search term is empty")
	ErrInvalidSort      = fmt.Errorf("invalid sort direction")
	ErrInvalidViewMode  = fmt.Errorf("invalid view mode")
	ErrUnsupportedImage = fmt.Errorf("unsupported image format")

	// Task errors
	ErrScanInProgress = fmt.Errorf("scan already in progress")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
