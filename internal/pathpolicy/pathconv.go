package pathpolicy

import "strings"

// ToNative converts a wire path (always "/"-separated) into the
// separator the current platform expects.
func ToNative(wirePath string, nativeSeparator rune) string {
	if nativeSeparator == '/' {
		return wirePath
	}
	return strings.ReplaceAll(wirePath, "/", string(nativeSeparator))
}

// ToWire converts a native path into the portable "/"-separated form
// every FileRequest/FileResponse carries on the wire.
func ToWire(nativePath string, nativeSeparator rune) string {
	if nativeSeparator == '/' {
		return nativePath
	}
	return strings.ReplaceAll(nativePath, string(nativeSeparator), "/")
}

// IsAbsolute recognizes Unix ("/...") and Windows ("C:\...",
// "\\host\...") absolute forms independently of the platform this
// binary happens to be running on, since a client and server may run
// on different operating systems.
func IsAbsolute(path string) bool {
	if path == "" {
		return false
	}
	if path[0] == '/' || path[0] == '\\' {
		return true
	}
	return isWindowsDriveAbsolute(path)
}

// isWindowsDriveAbsolute matches "X:\" or "X:/" prefixes, case
// insensitively, regardless of host platform.
func isWindowsDriveAbsolute(path string) bool {
	if len(path) < 3 {
		return false
	}
	drive := path[0]
	isLetter := (drive >= 'a' && drive <= 'z') || (drive >= 'A' && drive <= 'Z')
	return isLetter && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}
