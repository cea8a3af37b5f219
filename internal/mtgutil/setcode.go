package mtgutil

import "strings"

// windowsReservedNames are device names Windows refuses to use as a bare
// file or directory name, with or without an extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// WindowsSafeSetCode appends a trailing underscore to a set code that would
// otherwise collide with a reserved Windows device name when used as a
// directory or file name (e.g. the "CON" set from Conflux-adjacent products).
func WindowsSafeSetCode(setCode string) string {
	if windowsReservedNames[strings.ToUpper(setCode)] {
		return setCode + "_"
	}
	return setCode
}
