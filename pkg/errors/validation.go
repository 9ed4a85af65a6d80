package errors

import (
	"strings"
	"unicode"
)

// maxPackageNameLen bounds package names accepted from users.
const maxPackageNameLen = 256

// ValidatePackageName validates a root package name supplied by a caller.
// Index contents are not validated this way; only names that come from flags
// or query strings.
func ValidatePackageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxPackageNameLen {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains whitespace: %q", name)
		}
	}
	return nil
}

// ValidateDepth checks that a traversal depth bound is at least 1.
func ValidateDepth(depth int) error {
	if depth < 1 {
		return New(ErrCodeInvalidArgument, "depth must be >= 1, got %d", depth)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidArgument, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidArgument, "URL must use http or https scheme")
	}
	return nil
}

// ValidateMode checks a repository mode name ("remote" or "test").
func ValidateMode(mode string) error {
	switch mode {
	case "remote", "test":
		return nil
	case "":
		return New(ErrCodeInvalidMode, "mode cannot be empty")
	default:
		return New(ErrCodeInvalidMode, "invalid mode %q (must be one of: remote, test)", mode)
	}
}
